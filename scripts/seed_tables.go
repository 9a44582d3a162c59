package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"lumiere/internal/database"
	"lumiere/internal/models"
)

// Seeds or refreshes the floor plan without starting the server. The same
// file feeds the startup sync; this is for ops changing the layout on a
// stopped instance.

type tablesConfig struct {
	Tables []struct {
		Number   int    `yaml:"number"`
		Capacity int    `yaml:"capacity"`
		Location string `yaml:"location"`
	} `yaml:"tables"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		tablesPath = flag.String("tables", "configs/tables.yaml", "path to tables.yaml")
		dbPath     = flag.String("db", "./data/lumiere.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*tablesPath)
	if err != nil {
		return fmt.Errorf("read tables: %w", err)
	}
	var cfg tablesConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse tables: %w", err)
	}
	if len(cfg.Tables) == 0 {
		return fmt.Errorf("no tables in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	updated := 0
	for _, t := range cfg.Tables {
		if t.Number < 1 || t.Capacity < 1 {
			return fmt.Errorf("table %d: number and capacity must be positive", t.Number)
		}

		var id string
		err := db.QueryRowContext(ctx, `SELECT id FROM tables WHERE number = ?`, t.Number).Scan(&id)
		if err == nil {
			if err = db.UpdateTable(ctx, &models.Table{
				ID: id, Number: t.Number, Capacity: t.Capacity, Location: t.Location, Available: true,
			}); err != nil {
				return fmt.Errorf("update table %d: %w", t.Number, err)
			}
			updated++
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("look up table %d: %w", t.Number, err)
		}
		if err = db.CreateTable(ctx, &models.Table{
			ID: uuid.New().String(), Number: t.Number, Capacity: t.Capacity, Location: t.Location, Available: true,
		}); err != nil {
			return fmt.Errorf("create table %d: %w", t.Number, err)
		}
		created++
	}

	fmt.Printf("done: created=%d updated=%d\n", created, updated)
	return nil
}
