// torcida - real-time team voting game server
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/torcida/torcida/internal/api"
	"github.com/torcida/torcida/internal/config"
	"github.com/torcida/torcida/internal/game"
	"github.com/torcida/torcida/internal/relay"
	"github.com/torcida/torcida/internal/roster"
)

var version = "dev"

const defaultConfigPath = "/etc/torcida/config.yml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "version":
		fmt.Printf("torcida %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: torcida <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve              Start the game server")
	fmt.Println("  version            Show version")
	fmt.Println("  help               Show this help")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <path>    Path to configuration file (default /etc/torcida/config.yml)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  torcida serve --config /etc/torcida/config.yml")
}

// cmdServe starts the game server
func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	// Determine config path; built-in defaults apply when no file exists
	var cfg *config.Config
	cfgPath := *configPath
	if cfgPath == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			cfgPath = defaultConfigPath
		}
	}
	if cfgPath == "" {
		cfg = config.Default()
		log.Printf("No config file found, using defaults")
	} else {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	logger.Printf("Torcida %s starting...", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the team roster, falling back to the built-in set on failure
	rosterSvc := roster.New(cfg.Roster, logger)
	rosterCtx, rosterCancel := context.WithTimeout(ctx, time.Duration(cfg.Roster.TimeoutSeconds)*time.Second)
	rosterSvc.Load(rosterCtx)
	rosterCancel()
	logger.Printf("Roster loaded with %d teams", len(rosterSvc.Teams()))

	// Start the broadcast relay (embedded NATS unless an external
	// server is configured)
	rl, err := relay.Start(cfg.Relay, logger)
	if err != nil {
		log.Fatalf("Failed to start relay: %v", err)
	}

	// Create the game and the HTTP router
	g := game.New(cfg.Game, rosterSvc.Teams(), rl, rl.Origin(), logger)
	router := api.NewRouter(g, rl.Origin(), logger)
	if err := router.Start(ctx, rl); err != nil {
		log.Fatalf("Failed to subscribe to relay: %v", err)
	}

	// Run the match loop
	go g.Run(ctx)

	// Start HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
	server := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Set up signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for signal or error
	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, shutting down...", sig)
	case err := <-serverErr:
		log.Fatalf("HTTP server error: %v", err)
	}

	// Sequential shutdown
	logger.Println("Shutting down HTTP server...")
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := server.Shutdown(httpCtx); err != nil {
		logger.Printf("HTTP server shutdown error: %v", err)
	}

	logger.Println("Stopping match loop...")
	cancel()

	logger.Println("Closing relay...")
	rl.Close()
	logger.Println("Shutdown complete")
}
