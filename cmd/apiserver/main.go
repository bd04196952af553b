// Command apiserver runs the companion as a headless local service: it
// syncs against the game backend, polls exchange notifications, and serves
// the REST API for local frontends.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/api"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/auth"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/backend"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/config"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/notifications"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/session"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/storage"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/version"
)

var (
	port         = flag.Int("port", 8765, "Port for the local API server")
	baseURL      = flag.String("base-url", "", "Override the backend base URL")
	syncInterval = flag.Duration("sync-interval", 5*time.Minute, "Interval between background syncs")
)

func main() {
	_ = godotenv.Load()

	flag.Parse()

	log.Printf("CarteCalcio companion API server %s", version.Version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}

	apiTimeout, err := cfg.APITimeout()
	if err != nil {
		log.Fatalf("Invalid api.timeout: %v", err)
	}
	rateLimit, err := cfg.APIRateLimit()
	if err != nil {
		log.Fatalf("Invalid api.rate_limit: %v", err)
	}

	client := backend.NewClient(backend.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   apiTimeout,
		RateLimit: rateLimit,
	})

	tokenFile, err := cfg.TokenFile()
	if err != nil {
		log.Fatalf("Error resolving token file: %v", err)
	}
	var authOpts []auth.Option
	if cfg.Auth.Passphrase != "" {
		authOpts = append(authOpts, auth.WithPassphrase(cfg.Auth.Passphrase))
	}
	authOpts = append(authOpts, auth.WithRefresher(func(ctx context.Context, refresh string) (string, error) {
		pair, err := client.RefreshToken(ctx, refresh)
		if err != nil {
			return "", err
		}
		return pair.Access, nil
	}))
	tokens, err := auth.NewStore(tokenFile, authOpts...)
	if err != nil {
		log.Fatalf("Error opening token store: %v", err)
	}
	client.SetAuth(tokens)

	if !tokens.HasSession() {
		log.Printf("Warning: no stored session; run 'cartecalcio login' first")
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		log.Fatalf("Error resolving database path: %v", err)
	}
	storageCfg := storage.DefaultConfig(dbPath)
	storageCfg.AutoMigrate = cfg.Storage.AutoMigrate
	store, err := storage.NewStore(storageCfg)
	if err != nil {
		log.Fatalf("Error opening cache database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing cache: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reload tokens when the CLI writes a new session.
	if err := tokens.Watch(ctx); err != nil {
		log.Printf("Warning: token file watch unavailable: %v", err)
	}

	controller := session.NewController(client,
		session.WithUsername(cfg.App.Username),
		session.WithStore(store))

	if err := controller.Load(ctx); err != nil {
		log.Printf("Initial sync failed: %v", err)
	}

	go func() {
		ticker := time.NewTicker(*syncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := controller.Refresh(ctx); err != nil {
					log.Printf("Background sync failed: %v", err)
				}
			}
		}
	}()

	var poller *notifications.Poller
	if cfg.Notifications.Enabled {
		interval, err := cfg.NotificationsPollInterval()
		if err != nil {
			log.Fatalf("Invalid notifications.poll_interval: %v", err)
		}
		poller = notifications.NewPoller(client, store.Notifications,
			notifications.WithInterval(interval),
			notifications.WithHandler(func(n backend.Notification) {
				log.Printf("Notification: %s - %s", n.Title, n.Message)
			}))
		go poller.Run(ctx)
	}

	server := api.NewServer(&api.Config{Port: *port}, controller, poller, store)
	if err := server.Start(); err != nil {
		log.Fatalf("Error starting API server: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Goodbye")
}
