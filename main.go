package main

import "github.com/theirongolddev/fehbrank/cmd"

func main() {
	cmd.Execute()
}
