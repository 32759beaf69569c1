package cli

import (
	"context"
	"time"

	"backend-tripline/internal/config"
	"backend-tripline/internal/db"
	"backend-tripline/internal/legstore"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	timeout time.Duration

	loadConfig   = config.Load
	openPostgres = func(cfg config.Config) (db.TxQuerier, func(), error) {
		pool, err := db.ConnectPostgres(cfg)
		if err != nil {
			return nil, nil, err
		}
		return pool, pool.Close, nil
	}
	openLegIndexer = func(cfg config.Config) (indexer, func(), error) {
		client, err := db.ConnectMongo(cfg)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return legstore.NewMongo(client, cfg.MongoDatabase, nil), closeFn, nil
	}
)

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// rootCmd is the root command for tripctl.
var rootCmd = &cobra.Command{
	Use:     "tripctl",
	Version: "dev",
	Short:   "Administration tasks for the tripline backend",
	Long: `tripctl prepares the stores behind the tripline API.

It applies the PostgreSQL schema, bulk-loads the route catalog from CSV
and creates the MongoDB indexes used by the document leg store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(edgesCmd)
	rootCmd.AddCommand(mongoCmd)
}

// withTimeout bounds a command's work by the --timeout flag.
func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
