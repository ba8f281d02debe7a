package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/gokatarajesh/coupsurcoup/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

// seedFile is the on-disk layout of a question bank export.
type seedFile struct {
	Questions []question.Record `yaml:"questions"`
}

func main() {
	var (
		command = flag.String("command", "up", "Command: up, down, status or seed")
		dir     = flag.String("dir", "db/migrations", "Directory containing migration files")
		file    = flag.String("file", "db/seed/questions.yaml", "Question bank YAML used by -command seed")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	pgHost := getEnv("PG_HOST", "localhost")
	pgPort := getEnv("PG_PORT", "5432")
	pgUser := getEnv("PG_USER", "")
	pgPassword := getEnv("PG_PASSWORD", "")
	pgDatabase := getEnv("PG_DATABASE", "")
	pgSSLMode := getEnv("PG_SSL_MODE", "disable")

	if pgUser == "" {
		log.Fatal().Msg("PG_USER environment variable is required")
	}
	if pgPassword == "" {
		log.Fatal().Msg("PG_PASSWORD environment variable is required")
	}
	if pgDatabase == "" {
		log.Fatal().Msg("PG_DATABASE environment variable is required")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pgHost, pgPort, pgUser, pgPassword, pgDatabase, pgSSLMode)

	if *command == "seed" {
		if err := seed(dsn, *file); err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("failed to seed question bank")
		}
		return
	}

	migrationDir, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("failed to resolve migration directory")
	}
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		log.Fatal().Str("dir", migrationDir).Msg("migration directory does not exist")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal().Err(err).Str("host", pgHost).Str("port", pgPort).Msg("failed to open database connection")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().
		Str("host", pgHost).
		Str("database", pgDatabase).
		Str("migration_dir", migrationDir).
		Msg("connected to database")

	goose.SetTableName("goose_db_version")
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("failed to set goose dialect")
	}

	switch *command {
	case "up":
		if err := goose.Up(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations up")
		}
		log.Info().Msg("migrations applied successfully")
	case "down":
		if err := goose.Down(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations down")
		}
		log.Info().Msg("migrations rolled back successfully")
	case "status":
		if err := goose.Status(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to get migration status")
		}
	default:
		log.Fatal().Str("command", *command).Msg("unknown command. Use: up, down, status or seed")
	}
}

func seed(dsn, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var data seedFile
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	bank := question.NewPostgresBank(repository.NewQuestionRepository(sqlcgen.New(pool)))
	perType := map[string]int{}
	skipped := 0
	for _, rec := range data.Questions {
		if _, err := question.Normalize(rec); err != nil {
			log.Warn().Err(err).Str("question_id", rec.ID).Msg("skipping unresolvable question")
			skipped++
			continue
		}
		if err := bank.Save(ctx, rec); err != nil {
			return fmt.Errorf("save %s: %w", rec.ID, err)
		}
		perType[rec.Type]++
	}

	for _, quota := range question.Quotas {
		evt := log.Info()
		if perType[quota.Type] < quota.Count {
			evt = log.Warn()
		}
		evt.Str("type", quota.Type).
			Int("seeded", perType[quota.Type]).
			Int("quota", quota.Count).
			Msg("question bank coverage")
	}
	log.Info().Int("skipped", skipped).Msg("question bank seeded")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
