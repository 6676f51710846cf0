// Command seedfarms loads farm fixtures from a JSON file into the farms
// table so proximity alerting has something to alert. Fixtures without an
// id get a fresh UUID; re-running with stable ids updates in place.
//
// Usage:
//
//	go run ./cmd/seedfarms -file data/farms.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/farmsecure/outbreak-sync-service/internal/adapter/storage"
	"github.com/farmsecure/outbreak-sync-service/internal/config"
	"github.com/farmsecure/outbreak-sync-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	file := flag.String("file", "data/farms.json", "path to the farm fixture file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read fixture file: %w", err)
	}

	var farms []domain.Farm
	if err := json.Unmarshal(data, &farms); err != nil {
		return fmt.Errorf("parse fixture file: %w", err)
	}

	ctx := context.Background()
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := storage.Migrate(ctx, pool); err != nil {
		return err
	}

	store := storage.NewFarmStore(pool)
	for i := range farms {
		if farms[i].ID == "" {
			farms[i].ID = uuid.NewString()
		}
		if farms[i].OwnerID == "" {
			farms[i].OwnerID = uuid.NewString()
		}
		if err := store.Upsert(ctx, farms[i]); err != nil {
			return fmt.Errorf("seed farm %q: %w", farms[i].Name, err)
		}
	}

	fmt.Printf("seeded %d farms from %s\n", len(farms), *file)
	return nil
}
