package main

import (
	"github.com/joho/godotenv"

	"github.com/lumendocs/lumen/internal/cli"
)

func main() {
	// Load .env if present so provider API keys need not live in the shell.
	_ = godotenv.Load()

	cli.Execute()
}
