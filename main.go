package main

import "github.com/agentic-research/vfsh/cmd"

func main() {
	cmd.Execute()
}
