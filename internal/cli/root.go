// Package cli implements the wordbox commands.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/example/wordbox/internal/config"
	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/internal/spaced_repetition"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var (
	dbPath  string
	envFile string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "wordbox",
	Short:         "English/Persian vocabulary trainer",
	Long:          "Learn English words with a five-box Leitner scheduler, from Telegram or the command line.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (default: $DB_PATH or data/wordbox.db)")
	RootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file to load")
}

// loadConfig reads the environment and applies command line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBType = database.DriverSQLite
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func openDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Connect(database.Config{Driver: cfg.DBType, DSN: cfg.DSN()})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// store bundles the repositories used by the local commands
type store struct {
	db     *sqlx.DB
	words  *database.WordRepository
	stats  *database.GameStateRepository
	quiz   *database.QuizResultRepository
	engine *spaced_repetition.Engine
}

// withStore opens the database, runs fn and closes the database again
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s *store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	words := database.NewWordRepository(db)
	s := &store{
		db:     db,
		words:  words,
		stats:  database.NewGameStateRepository(db),
		quiz:   database.NewQuizResultRepository(db),
		engine: spaced_repetition.NewEngine(words, nil, nil),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, s)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid word id %q", arg)
	}
	return id, nil
}
