package main

import (
	"github.com/joho/godotenv"

	"overseer/internal/cli"
)

func main() {
	// A .env file is optional; OVERSEER_* variables override the config file
	// either way.
	_ = godotenv.Load()

	cli.Execute()
}
