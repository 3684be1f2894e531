package main

import (
	"os"

	"tasksync/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
