// cmd/storefront/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kanistore/storefront/internal/appstate"
	"github.com/kanistore/storefront/internal/browser"
	"github.com/kanistore/storefront/internal/client"
	"github.com/kanistore/storefront/internal/clientconfig"
)

var (
	configFile string
	v          = clientconfig.New()

	cfg     *clientconfig.Config
	api     *client.CatalogClient
	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Browse the Kani Store catalog",
	Long: `storefront is a terminal client for the Kani Store catalog API.

Run without arguments (or with "browse") to open the interactive catalog
browser. The other commands print catalog data and exit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = clientconfig.Load(v, configFile)
		if err != nil {
			return err
		}

		if err := setupLogging(cmd, cfg.Log); err != nil {
			return err
		}

		api = client.NewCatalogClient(cfg.API)
		log.WithField("base_url", cfg.API.BaseURL).Debug("Catalog client ready")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if api != nil {
			_ = api.Close()
		}
		if logFile != nil {
			_ = logFile.Close()
		}
	},
	RunE: runBrowse,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default: ./storefront.yaml or ~/.config/kanistore/storefront.yaml)")
	flags.String("api-url", "", "catalog API base URL")
	flags.String("lang", "", "preferred response language (en, ta)")
	flags.Int("columns", 0, "product grid columns")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write logs to this file")
	flags.String("email", "", "sign in with this email (password from STOREFRONT_AUTH_PASSWORD)")

	bindFlag("api.base_url", "api-url")
	bindFlag("api.language", "lang")
	bindFlag("ui.grid_columns", "columns")
	bindFlag("log.level", "log-level")
	bindFlag("log.file", "log-file")
	bindFlag("auth.email", "email")

	rootCmd.AddCommand(browseCmd, categoriesCmd, subcategoriesCmd, productsCmd, productCmd, searchCmd, signinCmd)
}

func bindFlag(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// setupLogging routes logrus away from the terminal for the interactive
// browser, which owns the screen.
func setupLogging(cmd *cobra.Command, cfg clientconfig.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		log.SetOutput(f)
	case isInteractive(cmd):
		log.SetOutput(io.Discard)
	default:
		log.SetOutput(os.Stderr)
	}
	return nil
}

func isInteractive(cmd *cobra.Command) bool {
	name := cmd.Name()
	return name == "storefront" || name == "browse"
}

func newBrowser() (*browser.Browser, *browser.SearchOverlay) {
	opts := browser.OptionsFromConfig(cfg.UI)
	return browser.New(api, appstate.NewMemoryStore(), opts), browser.NewSearchOverlay(api)
}

// signIn authenticates with the configured credentials and records the
// shopper in store. It does nothing when no email is configured.
func signIn(ctx context.Context, store appstate.Store) error {
	if cfg.Auth.Email == "" {
		return nil
	}

	session, err := api.Signin(ctx, cfg.Auth.Email, cfg.Auth.Password)
	if err != nil {
		return err
	}

	store.SetUser(&appstate.User{
		ID:    session.User.ID,
		Name:  session.User.Name,
		Email: session.User.Email,
	})
	log.WithField("email", session.User.Email).Info("Signed in")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
