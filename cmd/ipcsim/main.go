package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env overrides, loaded before envconfig reads the
	// environment.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
