// Command cartecalcio is the CarteCalcio companion CLI: it syncs the card
// collection and exchange offers from the game backend, keeps a local cache,
// and drives trades, pack purchases and quizzes from the terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/auth"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/backend"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/config"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/session"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/storage"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/version"
)

var (
	debugMode = flag.Bool("debug", false, "Enable verbose debug logging")
	baseURL   = flag.String("base-url", "", "Override the backend base URL")
	timeout   = flag.Duration("timeout", 0, "Override the per-request timeout")
)

// app bundles everything a subcommand needs.
type app struct {
	cfg     *config.Config
	client  *backend.Client
	tokens  *auth.Store
	session *session.Controller
}

func main() {
	// .env is optional; real settings live in the TOML config.
	_ = godotenv.Load()

	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		return
	}

	// Commands that need no backend wiring.
	switch args[0] {
	case "version":
		fmt.Printf("cartecalcio %s (%s)\n", version.Version, version.Commit)
		return
	case "migrate":
		runMigrateCommand(args[1:])
		return
	case "help":
		printUsage()
		return
	}

	a, err := bootstrap()
	if err != nil {
		log.Fatalf("Error initializing: %v", err)
	}

	ctx := context.Background()

	switch args[0] {
	case "register":
		err = a.runRegister(ctx, args[1:])
	case "login":
		err = a.runLogin(ctx, args[1:])
	case "logout":
		err = a.runLogout()
	case "sync":
		err = a.runSync(ctx)
	case "collection":
		err = a.runCollection(ctx, args[1:])
	case "exchange":
		err = a.runExchange(ctx, args[1:])
	case "packs":
		err = a.runPacks(ctx, args[1:])
	case "quiz":
		err = a.runQuiz(ctx, args[1:])
	case "credits":
		err = a.runCredits(ctx)
	case "achievements":
		err = a.runAchievements(ctx)
	case "notifications":
		err = a.runNotifications(ctx, args[1:])
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// bootstrap loads config and wires the client, token store and session
// controller shared by the authenticated subcommands.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}
	if url := os.Getenv("CARTECALCIO_API_URL"); url != "" && *baseURL == "" {
		cfg.API.BaseURL = url
	}
	if *debugMode {
		cfg.App.DebugMode = true
	}

	apiTimeout, err := cfg.APITimeout()
	if err != nil {
		return nil, err
	}
	if *timeout > 0 {
		apiTimeout = *timeout
	}
	rateLimit, err := cfg.APIRateLimit()
	if err != nil {
		return nil, err
	}

	client := backend.NewClient(backend.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   apiTimeout,
		RateLimit: rateLimit,
	})

	tokenFile, err := cfg.TokenFile()
	if err != nil {
		return nil, err
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
		return nil, fmt.Errorf("open token store: %w", err)
	}
	client.SetAuth(tokens)

	controller := session.NewController(client, session.WithUsername(cfg.App.Username))

	return &app{
		cfg:     cfg,
		client:  client,
		tokens:  tokens,
		session: controller,
	}, nil
}

// openStore opens the local cache and attaches it to the session.
func (a *app) openStore() (*storage.Store, error) {
	dbPath, err := a.cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	storageCfg := storage.DefaultConfig(dbPath)
	storageCfg.AutoMigrate = a.cfg.Storage.AutoMigrate
	store, err := storage.NewStore(storageCfg)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}

func (a *app) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "Account username")
	email := fs.String("email", "", "Account email")
	_ = fs.Parse(args)

	if *username == "" || *email == "" {
		return fmt.Errorf("register requires -username and -email")
	}
	password, err := promptPassword()
	if err != nil {
		return err
	}

	if err := a.client.Register(ctx, *username, *email, password); err != nil {
		return err
	}
	fmt.Printf("Account %s created. Run 'cartecalcio login -username %s' to sign in.\n", *username, *username)
	return nil
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "Account username")
	_ = fs.Parse(args)

	if *username == "" {
		return fmt.Errorf("login requires -username")
	}
	password, err := promptPassword()
	if err != nil {
		return err
	}

	pair, err := a.client.Login(ctx, *username, password)
	if err != nil {
		return err
	}
	if err := a.tokens.SetTokens(auth.Tokens{Access: pair.Access, Refresh: pair.Refresh}); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}

	a.cfg.App.Username = *username
	if err := a.cfg.Save(); err != nil {
		log.Printf("Warning: could not save config: %v", err)
	}

	fmt.Printf("Logged in as %s.\n", *username)
	return nil
}

func (a *app) runLogout() error {
	if err := a.tokens.Clear(); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

func (a *app) runSync(ctx context.Context) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	controller := session.NewController(a.client,
		session.WithUsername(a.cfg.App.Username),
		session.WithStore(store))

	start := time.Now()
	if err := controller.Load(ctx); err != nil {
		return err
	}

	list := controller.Cards()
	owned := 0
	for _, card := range list {
		if card.Owned {
			owned++
		}
	}
	fmt.Printf("Synced %d cards (%d owned), %d outgoing offers, %d feed offers in %s.\n",
		len(list), owned, len(controller.MyOffers()), len(controller.FeedOffers()),
		time.Since(start).Round(time.Millisecond))
	return nil
}

func (a *app) runCredits(ctx context.Context) error {
	credits, err := a.client.Credits(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d credits\n", credits.Username, credits.Credits)
	return nil
}

func (a *app) runAchievements(ctx context.Context) error {
	achievements, err := a.client.Achievements(ctx)
	if err != nil {
		return err
	}
	if len(achievements) == 0 {
		fmt.Println("No achievements yet.")
		return nil
	}
	for _, achievement := range achievements {
		marker := " "
		if achievement.Unlocked {
			marker = "*"
		}
		fmt.Printf("%s %-30s %d/%d\n", marker, achievement.Name, achievement.Progress, achievement.Target)
	}
	return nil
}

func (a *app) runNotifications(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "read" {
		if len(args) < 2 {
			return fmt.Errorf("usage: cartecalcio notifications read <id> [id...]")
		}
		if err := a.client.MarkNotificationsRead(ctx, args[1:]); err != nil {
			return err
		}
		fmt.Printf("Marked %d notification(s) read.\n", len(args)-1)
		return nil
	}

	notifications, err := a.client.Notifications(ctx)
	if err != nil {
		return err
	}
	if len(notifications) == 0 {
		fmt.Println("No notifications.")
		return nil
	}
	for _, n := range notifications {
		fmt.Printf("[%s] %s: %s\n", n.ID, n.Title, n.Message)
	}
	return nil
}

func runMigrateCommand(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: cartecalcio migrate <up|down|status>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		log.Fatalf("Error resolving database path: %v", err)
	}

	mgr, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		log.Fatalf("Error creating migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch args[0] {
	case "up":
		if err := mgr.Up(); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
		fmt.Println("Migrations applied.")
	case "down":
		if err := mgr.Down(); err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
		fmt.Println("Migration rolled back.")
	case "status":
		migrationVersion, dirty, err := mgr.Version()
		if err != nil {
			log.Fatalf("Error getting version: %v", err)
		}
		if dirty {
			fmt.Printf("Current version: %d (dirty)\n", migrationVersion)
		} else {
			fmt.Printf("Current version: %d\n", migrationVersion)
		}
	default:
		fmt.Printf("Unknown migrate command: %s\n", args[0])
		os.Exit(1)
	}
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return password, nil
}

func printUsage() {
	fmt.Println("CarteCalcio Companion")
	fmt.Println("=====================")
	fmt.Println()
	fmt.Println("Usage: cartecalcio <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  register      - Create a new account")
	fmt.Println("  login         - Sign in and store tokens")
	fmt.Println("  logout        - Discard stored tokens")
	fmt.Println("  sync          - Fetch collection and offers into the local cache")
	fmt.Println("  collection    - Show the card collection")
	fmt.Println("  exchange      - List, propose, join or cancel trade offers")
	fmt.Println("  packs         - List and purchase card packs")
	fmt.Println("  quiz          - Play a quiz theme for credits")
	fmt.Println("  credits       - Show the credit balance")
	fmt.Println("  achievements  - Show achievement progress")
	fmt.Println("  notifications - Show or mark exchange notifications")
	fmt.Println("  migrate       - Run cache database migrations")
	fmt.Println("  version       - Show the build version")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  cartecalcio login -username mario")
	fmt.Println("  cartecalcio sync")
	fmt.Println("  cartecalcio exchange copies")
	fmt.Println("  cartecalcio exchange propose -card player:1 -wants \"any epic\"")
	fmt.Println("  cartecalcio packs buy -slug starter")
	fmt.Println()
}
