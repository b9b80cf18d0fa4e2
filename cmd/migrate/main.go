package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"intervals/backend/internal/config"
	"intervals/backend/internal/db"
	"intervals/backend/internal/repository"
	"intervals/backend/migrations"
)

func main() {
	list := flag.Bool("list", false, "list stored keys after migrating")
	reset := flag.String("reset", "", "comma-separated keys to delete (e.g. presets,theme)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Storage != config.StorageSQLite {
		log.Fatalf("migrations need sqlite storage, got %q", cfg.Storage)
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	applied, err := db.RunMigrations(ctx, database, migrations.Source(cfg.MigrationsDir))
	if err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	log.Printf("migrations applied successfully (%d new)", len(applied))

	repo := repository.NewKVRepository(database)
	if *reset != "" {
		removed, err := resetKeys(ctx, repo, strings.Split(*reset, ","))
		if err != nil {
			log.Fatalf("reset: %v", err)
		}
		log.Printf("reset %d key(s): %s", len(removed), strings.Join(removed, ", "))
	}
	if *list {
		if err := listKeys(ctx, repo, os.Stdout); err != nil {
			log.Fatalf("list: %v", err)
		}
	}
}

// resetKeys deletes the named keys so the server starts from defaults for them.
func resetKeys(ctx context.Context, repo *repository.KVRepository, keys []string) ([]string, error) {
	removed := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if err := repo.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed = append(removed, key)
	}
	return removed, nil
}

func listKeys(ctx context.Context, repo *repository.KVRepository, w io.Writer) error {
	keys, err := repo.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		entry, err := repo.GetEntry(ctx, key)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\t%d bytes\t%s\n", key, len(entry.Value), entry.UpdatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}
