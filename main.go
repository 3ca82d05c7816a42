package main

import (
	"github.com/joho/godotenv"
	"github.com/timewise-app/support-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// .env is optional; fall back to real environment variables.
	_ = godotenv.Load()
}
