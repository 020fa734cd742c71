package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/openfleet/dispatchsim/cmd"
)

func main() {
	// Optional .env for local runs.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
