package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mountly/coverage-backend/internal/app"
	"github.com/mountly/coverage-backend/internal/config"
	"github.com/mountly/coverage-backend/internal/db"
	"github.com/mountly/coverage-backend/internal/seeds"
	"github.com/mountly/coverage-backend/internal/workers"
)

func main() {
	fixturePath := flag.String("fixture", "", "YAML fixture (default: built-in Dallas demo data)")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := db.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()
	workers.Init()

	data := seeds.DefaultFixture
	if *fixturePath != "" {
		data, err = os.ReadFile(*fixturePath)
		if err != nil {
			log.Fatalf("❌ Seeding failed: %v", err)
		}
	}
	fx, err := seeds.Parse(data)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	a := app.New(cfg, db.DB)
	if _, err := seeds.SeedAll(context.Background(), a.Workers, fx); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
