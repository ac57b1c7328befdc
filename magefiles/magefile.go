//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the server binary into ./bin.
func Build() error {
	fmt.Println(">> go build")
	return sh.Run("go", "build", "-o", "bin/modelo111", "./cmd/server")
}

// Test runs the full test suite.
func Test() error {
	fmt.Println(">> go test")
	return sh.RunV("go", "test", "./...")
}

// Seed loads the demo data set into the configured database.
func Seed() error {
	loadEnv()
	fmt.Println(">> seeding", dbPath())
	return sh.RunV("go", "run", "./scripts/seed")
}

// Dev seeds a fresh database if none exists and starts the server.
func Dev() error {
	loadEnv()
	if _, err := os.Stat(dbPath()); os.IsNotExist(err) {
		mg.Deps(Seed)
	}
	fmt.Println(">> starting server")
	return sh.RunV("go", "run", "./cmd/server")
}

// Clean removes build output and the local database.
func Clean() error {
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	return os.Remove(dbPath())
}

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		fmt.Println(">> no .env file, using defaults")
	}
}

func dbPath() string {
	if p := os.Getenv("DB_PATH"); p != "" {
		return p
	}
	return "modelo111.db"
}
