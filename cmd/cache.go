package cmd

import (
	"fmt"

	"github.com/theirongolddev/fehbrank/internal/cli"
	"github.com/theirongolddev/fehbrank/internal/pipeline"
	"github.com/theirongolddev/fehbrank/internal/store"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the parsed dataset cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache location and contents",
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached dataset file",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStatus(_ *cobra.Command, _ []string) error {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer cache.Close()

	files, plans, err := cache.Stats()
	if err != nil {
		return fmt.Errorf("reading cache: %w", err)
	}
	fmt.Printf("  Cache:  %s\n", pipeline.CachePath())
	fmt.Printf("  Files:  %s\n", cli.FormatNumber(int64(files)))
	fmt.Printf("  Plans:  %s\n", cli.FormatNumber(int64(plans)))
	return nil
}

func runCacheClear(_ *cobra.Command, _ []string) error {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer cache.Close()

	if err := cache.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Println("  Cache cleared.")
	return nil
}
