package main

import (
	"github.com/joho/godotenv"

	"testsmith/internal/cli"
)

// Set by ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Optional .env for OLLAMA_HOST / TESTSMITH_MODEL overrides.
	_ = godotenv.Load()

	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
