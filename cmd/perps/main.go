package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/comodofi/perps/cmd/perps/cmd"
)

func main() {
	// Load .env if present (silently ignore if missing).
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
