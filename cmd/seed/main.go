package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // load .env if present

	if err := NewSeedCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
