package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grazioso/shelter/internal/config"
	"github.com/grazioso/shelter/internal/db/mongodb"
	"github.com/grazioso/shelter/internal/db/sqlite"
	"github.com/grazioso/shelter/internal/logger"
	"github.com/grazioso/shelter/internal/services"
	"github.com/grazioso/shelter/internal/shelter"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config

	// Stores are connected on demand so commands that only touch tickets
	// never need a reachable MongoDB.
	animalStore *mongodb.MongoDB
	ticketStore *sqlite.SQLite
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shelter",
	Short: "Animal shelter records and help desk tickets",
	Long: `Shelter manages the animal outcome records kept in MongoDB and the
help desk tickets kept in SQLite.

Read, create, update and delete animal records, list dogs suited for
water rescue, mountain rescue or disaster tracking training, and log
and report on support tickets.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip loading for the init command itself
		if cmd.Name() == "init" {
			logger.Init(logger.ParseLogLevel(logLevel), os.Stderr)
			return nil
		}

		if err := config.LoadEnvFile(".env"); err != nil {
			return err
		}

		if cfgFile == "" {
			cfgFile = config.GetConfigPath()
		}

		if !config.Exists(cfgFile) {
			return fmt.Errorf("configuration file not found at %s. Run 'shelter init' to create one", cfgFile)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logger.Init(logger.ParseLogLevel(level), os.Stderr)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		var firstErr error
		if animalStore != nil {
			if err := animalStore.Disconnect(ctx); err != nil {
				firstErr = err
			}
			animalStore = nil
		}
		if ticketStore != nil {
			if err := ticketStore.Disconnect(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
			ticketStore = nil
		}
		_ = logger.GetLogger().Sync()
		return firstErr
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.shelter/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warning, error (overrides config file)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(animalsCmd)
	rootCmd.AddCommand(rescueCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(schedulerCmd)
}

// connectAnimals connects to MongoDB and returns a gateway over the
// configured collection
func connectAnimals(ctx context.Context) (*shelter.Gateway, error) {
	if animalStore == nil {
		store := mongodb.New(cfg.NoSQLDatabase)
		if err := store.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		animalStore = store
	}
	return shelter.New(animalStore.Collection()), nil
}

// connectTickets opens the ticket database, applying pending migrations
func connectTickets(ctx context.Context) (*services.TicketService, error) {
	if ticketStore == nil {
		store := sqlite.New(cfg.SQLDatabase)
		if err := store.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to open ticket database: %w", err)
		}
		ticketStore = store
	}
	return services.NewTicketService(ticketStore), nil
}
