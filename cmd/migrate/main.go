package main

import (
	"fmt"
	"log"
	"os"

	"github.com/wanpass/wanpass/app/repository"
	"github.com/wanpass/wanpass/internal/pkg/auth"
	"github.com/wanpass/wanpass/internal/pkg/database"
	"github.com/wanpass/wanpass/internal/pkg/env"
)

// Applies the schema and seeds the initial admin account outside the server
// process, for deployments that migrate before rollout.
func main() {
	env.SetupEnvFile()

	if len(os.Args) > 1 && os.Args[1] != "up" {
		printUsage()
		os.Exit(1)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("schema is up to date")

	repos := repository.NewFactory(db).GetRepositories()
	if err := auth.EnsureInitialAdmin(repos.Admin); err != nil {
		log.Fatalf("could not seed admin account: %v", err)
	}
	log.Println("admin account present")
}

func printUsage() {
	fmt.Println("Usage: migrate [up]")
	fmt.Println("  up  apply the schema and seed the initial admin (default)")
}
