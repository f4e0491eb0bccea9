package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    plan_count           INTEGER NOT NULL DEFAULT 0,
    skipped_rows         INTEGER NOT NULL DEFAULT 0,
    cell_warnings        INTEGER NOT NULL DEFAULT 0,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS plans (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    plan_id              TEXT NOT NULL,
    program              TEXT NOT NULL,
    carrier              TEXT,
    plan_name            TEXT,
    network              TEXT,
    nationwide           INTEGER NOT NULL DEFAULT 0,
    hsa_eligible         INTEGER NOT NULL DEFAULT 0,
    record               BLOB NOT NULL,
    PRIMARY KEY (file_path, position)
);

CREATE INDEX IF NOT EXISTS idx_plans_plan_id ON plans(plan_id);
CREATE INDEX IF NOT EXISTS idx_plans_program ON plans(program);
`
