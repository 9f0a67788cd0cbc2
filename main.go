package main

import "github.com/sadopc/planner/internal/cli"

func main() {
	cli.Execute()
}
