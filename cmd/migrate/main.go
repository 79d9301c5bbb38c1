package main

import (
	"database/sql"
	"flag"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-boxoffice/internal/config"
	"ms-boxoffice/internal/database/migrations"
)

func main() {
	_ = godotenv.Load()

	down := flag.Bool("down", false, "roll back the most recent migration instead of migrating up")
	dir := flag.String("dir", "./migrations", "directory containing migration files")
	flag.Parse()

	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("[Database] Failed to open Postgres: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("[Database] Failed to connect to Postgres: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: *dir,
		AutoMigrate:   true,
	})

	if *down {
		if err := runner.Down(); err != nil {
			log.Fatalf("[Migrations] %v", err)
		}
		return
	}
	if err := runner.Up(); err != nil {
		log.Fatalf("[Migrations] %v", err)
	}
}
