package main

import "github.com/agentic-research/perch/cmd"

func main() {
	cmd.Execute()
}
