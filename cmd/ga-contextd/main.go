package main

import "github.com/adrianmross/ga-context/internal/cmd"

func main() {
	cmd.ExecuteDaemon()
}
