package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/resume-builder/internal/dashboard"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/records"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resume completion",
	Long: `With --in, shows which sections of a resume file are complete.
With --user-id, lists that user's stored resumes the way the dashboard does.`,
	RunE: runStatus,
}

var (
	statusInput       string
	statusUserID      string
	statusDatabaseURL string
	statusSQLitePath  string
	statusSearch      string
	statusSort        string
	statusDirection   string
)

func init() {
	statusCmd.Flags().StringVarP(&statusInput, "in", "i", "", "Path to resume record JSON")
	statusCmd.Flags().StringVarP(&statusUserID, "user-id", "u", "", "User whose stored resumes to list")
	statusCmd.Flags().StringVar(&statusDatabaseURL, "db-url", "", "Database URL (defaults to DATABASE_URL)")
	statusCmd.Flags().StringVar(&statusSQLitePath, "sqlite", "", "SQLite database file (defaults to SQLITE_PATH)")
	statusCmd.Flags().StringVar(&statusSearch, "search", "", "Only titles containing this text")
	statusCmd.Flags().StringVar(&statusSort, "sort", string(dashboard.SortLastModified), "Sort key: title, completion, lastModified or createdAt")
	statusCmd.Flags().StringVar(&statusDirection, "direction", string(dashboard.Descending), "Sort direction: asc or desc")
	statusCmd.MarkFlagsMutuallyExclusive("in", "user-id")
	statusCmd.MarkFlagsMutuallyExclusive("db-url", "sqlite")
	statusCmd.MarkFlagsOneRequired("in", "user-id")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	p := observability.NewPrinter(cmd.OutOrStdout())
	if statusInput != "" {
		rec, err := loadRecord(statusInput)
		if err != nil {
			return err
		}
		p.PrintCompletion(rec.Metadata.Title, rec.ResumeData)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, closeStore, err := openStatusStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	log := logging.NewNop()
	q := dashboard.Query{
		Search:    statusSearch,
		SortKey:   dashboard.ParseSortKey(statusSort),
		Direction: dashboard.ParseDirection(statusDirection),
	}
	items, stats, err := records.NewService(st, log).List(ctx, statusUserID, q)
	if err != nil {
		return err
	}
	p.PrintDashboard(items, stats)
	return nil
}

// openStatusStore reads from PostgreSQL or SQLite. Flags win over the environment.
func openStatusStore(ctx context.Context) (store.Store, func(), error) {
	databaseURL, sqlitePath := statusDatabaseURL, statusSQLitePath
	if databaseURL == "" && sqlitePath == "" {
		databaseURL, sqlitePath = os.Getenv("DATABASE_URL"), os.Getenv("SQLITE_PATH")
	}

	log := logging.NewNop()
	switch {
	case databaseURL != "":
		database, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return store.NewSQL(database, store.NewLocalNotifier(), log), database.Close, nil
	case sqlitePath != "":
		lite, err := db.OpenSQLite(ctx, sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return store.NewSQL(lite, store.NewLocalNotifier(), log), func() { _ = lite.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("--db-url, --sqlite, DATABASE_URL or SQLITE_PATH is required with --user-id")
	}
}
