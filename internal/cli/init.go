package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/grazioso/shelter/internal/config"
	"github.com/grazioso/shelter/internal/db/mongodb"
	"github.com/grazioso/shelter/internal/db/sqlite"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize shelter configuration",
	Long:  `Interactive wizard to set up the animal records database, the ticket database and optional scheduled reports.`,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("🐾 Welcome to Shelter Setup")
	fmt.Println("===========================")
	fmt.Println()

	configPath := cfgFile
	if configPath == "" {
		configPath = config.GetConfigPath()
	}
	if config.Exists(configPath) {
		fmt.Printf("Configuration file already exists at: %s\n", configPath)
		confirmed, err := promptYesNo(reader, "Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	mongoCfg := &cfg.NoSQLDatabase

	// Animal records
	fmt.Println("\n📊 Animal Records (MongoDB)")
	fmt.Println("---------------------------")

	host, err := promptOptional(reader, fmt.Sprintf("Host [%s]: ", mongoCfg.Host), mongoCfg.Host)
	if err != nil {
		return err
	}
	mongoCfg.Host = host

	port, err := promptWithRetry(reader, "Port [27017]: ", validatePort)
	if err != nil {
		return err
	}
	mongoCfg.Port, _ = strconv.Atoi(port)

	username, err := promptOptional(reader, fmt.Sprintf("Username [%s]: ", mongoCfg.Username), mongoCfg.Username)
	if err != nil {
		return err
	}
	mongoCfg.Username = username

	fmt.Printf("ℹ️  Leave the password empty to read it from %s at run time.\n", config.PasswordEnv)
	password, err := promptOptional(reader, "Password: ", "")
	if err != nil {
		return err
	}
	mongoCfg.Password = password

	dbName, err := promptOptional(reader, fmt.Sprintf("Database name [%s]: ", mongoCfg.DatabaseName), mongoCfg.DatabaseName)
	if err != nil {
		return err
	}
	mongoCfg.DatabaseName = dbName

	collection, err := promptOptional(reader, fmt.Sprintf("Collection name [%s]: ", mongoCfg.CollectionName), mongoCfg.CollectionName)
	if err != nil {
		return err
	}
	mongoCfg.CollectionName = collection

	// Tickets
	fmt.Println("\n🎫 Help Desk Tickets (SQLite)")
	fmt.Println("-----------------------------")

	sqlPath, err := promptOptional(reader, fmt.Sprintf("Database file [%s]: ", cfg.SQLDatabase.URI), cfg.SQLDatabase.URI)
	if err != nil {
		return err
	}
	cfg.SQLDatabase.URI = sqlPath

	// Reports
	fmt.Println("\n⏰ Scheduled Reports")
	fmt.Println("--------------------")

	addReport, err := promptYesNo(reader, "Add a scheduled report? (y/N): ")
	if err != nil {
		return err
	}
	for addReport {
		report, err := promptWithRetry(reader, "Report (water-rescue, mountain-rescue, disaster-tracking, open-tickets): ", validateReport)
		if err != nil {
			return err
		}
		expr, err := promptWithRetry(reader, "Cron expression (e.g. 0 8 * * * or @daily): ", validateCronExpression)
		if err != nil {
			return err
		}
		cfg.Reports = append(cfg.Reports, config.ReportJob{
			Name:     fmt.Sprintf("%s-%d", report, len(cfg.Reports)+1),
			CronExpr: expr,
			Report:   report,
		})

		addReport, err = promptYesNo(reader, "Add another report? (y/N): ")
		if err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Test database connections
	fmt.Println("\n🔌 Testing MongoDB connection...")
	testCfg := *mongoCfg
	if testCfg.Password == "" {
		testCfg.Password = os.Getenv(config.PasswordEnv)
	}
	mongoStore := mongodb.New(testCfg)
	if err := mongoStore.Connect(ctx); err != nil {
		fmt.Printf("⚠️  Could not reach MongoDB: %v\n", err)
		fmt.Println("   The configuration will be saved anyway. Check the server and credentials before use.")
	} else {
		defer mongoStore.Disconnect(context.Background())
		fmt.Println("✅ MongoDB connection successful!")
	}

	fmt.Println("\n🗄️  Preparing ticket database...")
	ticketDB := sqlite.New(cfg.SQLDatabase)
	if err := ticketDB.Connect(ctx); err != nil {
		fmt.Printf("❌ Failed to open ticket database: %v\n", err)
		return err
	}
	defer ticketDB.Disconnect(context.Background())
	fmt.Println("✅ Ticket database ready!")

	// Save configuration
	fmt.Println("\n💾 Saving configuration...")
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✅ Configuration saved to: %s\n", configPath)

	// Summary
	fmt.Println("\n📋 Configuration Summary")
	fmt.Println("========================")
	fmt.Printf("MongoDB: %s:%d (%s.%s)\n", mongoCfg.Host, mongoCfg.Port, mongoCfg.DatabaseName, mongoCfg.CollectionName)
	fmt.Printf("Username: %s\n", mongoCfg.Username)
	fmt.Printf("Password: %s\n", maskSensitiveData(mongoCfg.Password, "*"))
	fmt.Printf("Tickets: %s\n", cfg.SQLDatabase.URI)
	fmt.Printf("Reports: %d\n", len(cfg.Reports))
	fmt.Println()
	fmt.Println("🎉 Setup complete! You can now use shelter.")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Browse records: shelter animals read")
	fmt.Println("  2. Find rescue candidates: shelter rescue water")
	fmt.Println("  3. Log a ticket: shelter tickets log --category Network --severity High --minutes 45")
	fmt.Println("  4. Start the API: shelter api")

	return nil
}
