package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/grazioso/shelter/internal/api"
	"github.com/grazioso/shelter/internal/db"
	"github.com/grazioso/shelter/internal/logger"
)

var (
	apiPort    string
	apiHost    string
	corsOrigin string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the Shelter REST API server",
	Long: `Start the Shelter REST API server exposing:
- Animal records (Create, Read, Update, Delete)
- Rescue candidate presets (Read-only)
- Help desk tickets (Log, open list, reports)

The API runs on HTTP (no authentication required for now).`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVarP(&apiPort, "port", "p", "8989", "Port to run the API server on")
	apiCmd.Flags().StringVarP(&apiHost, "host", "H", "0.0.0.0", "Host to bind the API server to")
	apiCmd.Flags().StringVarP(&corsOrigin, "cors-origin", "c", "", "CORS origin to allow (overrides config file, use '*' for all origins)")
}

func runAPI(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	selectedCORSOrigin := corsOrigin
	if selectedCORSOrigin == "" {
		if cfg.CORSOrigin != "" {
			selectedCORSOrigin = cfg.CORSOrigin
		} else {
			selectedCORSOrigin = "*"
		}
	}

	fmt.Printf("🚀 Starting Shelter API Server\n")
	fmt.Printf("==============================\n")
	fmt.Printf("Host: %s\n", apiHost)
	fmt.Printf("Port: %s\n", apiPort)
	fmt.Printf("CORS Origin: %s\n", selectedCORSOrigin)
	fmt.Printf("Rate Limit: %.0f req/s (burst %d)\n", cfg.API.RateLimit, cfg.API.Burst)
	fmt.Printf("URL: http://%s:%s/api/v1\n", apiHost, apiPort)
	fmt.Println()

	gateway, err := connectAnimals(ctx)
	if err != nil {
		return err
	}
	ticketService, err := connectTickets(ctx)
	if err != nil {
		return err
	}

	fmt.Println("✅ Database connections successful!")

	if !logger.IsDebugEnabled() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.NewServer(gateway, ticketService, api.Options{
		CORSOrigin: selectedCORSOrigin,
		RateLimit:  cfg.API.RateLimit,
		Burst:      cfg.API.Burst,
		Stores: map[string]db.Pinger{
			"mongodb": animalStore,
			"sqlite":  ticketStore,
		},
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\n🛑 Shutting down API server...")
		animalStore.Disconnect(ctx)
		ticketStore.Disconnect(ctx)
		os.Exit(0)
	}()

	fmt.Println("🌐 API Server is running!")
	fmt.Println()
	fmt.Println("📚 Available Endpoints:")
	fmt.Println("  Animals:")
	fmt.Println("    GET    /api/v1/animals?filter=   - Read records")
	fmt.Println("    POST   /api/v1/animals           - Create record")
	fmt.Println("    PUT    /api/v1/animals           - Update records ({filter, set})")
	fmt.Println("    DELETE /api/v1/animals?filter=   - Delete records")
	fmt.Println()
	fmt.Println("  Rescue:")
	fmt.Println("    GET    /api/v1/rescue/:preset    - water, mountain or disaster")
	fmt.Println()
	fmt.Println("  Tickets:")
	fmt.Println("    POST   /api/v1/tickets           - Log ticket")
	fmt.Println("    GET    /api/v1/tickets/open      - Open tickets")
	fmt.Println("    GET    /api/v1/tickets/stats     - Resolution stats")
	fmt.Println("    GET    /api/v1/tickets/severity  - Severity distribution")
	fmt.Println()
	fmt.Println("    GET    /api/v1/health            - Health check")
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop the server")

	address := fmt.Sprintf("%s:%s", apiHost, apiPort)
	return server.Run(address)
}
