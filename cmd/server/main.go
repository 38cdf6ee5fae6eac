package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/app"
	"github.com/agenthands/automationvault/internal/auth"
	"github.com/agenthands/automationvault/internal/config"
	"github.com/agenthands/automationvault/internal/intake"
	"github.com/agenthands/automationvault/internal/logger"
	"github.com/agenthands/automationvault/internal/server"
	"github.com/agenthands/automationvault/internal/tracing"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "automationvault",
	Short:        "Automation catalog backend",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional
		_ = godotenv.Load()
	},
}

// loadConfig reads the TOML file on top of the defaults and applies
// environment overrides. A missing file is not an error.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = config.DefaultPath
	}

	cfg, err := config.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads the config and builds the App. The caller must Close both.
func newApp(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, log, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, log, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer a.Close()

		shutdownTracing, err := tracing.Setup(ctx, a.Config.Tracing)
		if err != nil {
			return fmt.Errorf("setting up tracing: %w", err)
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()

		if a.Config.Server.Mode != "" {
			gin.SetMode(a.Config.Server.Mode)
		}

		srv := &http.Server{
			Addr:              ":" + a.Config.Server.Port,
			Handler:           server.NewServer(a).SetupRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("Starting server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, log, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer log.Sync()
		defer a.Close()

		if err := a.Store.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migrating store: %w", err)
		}
		fmt.Println("Store schema is up to date")
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <workflow.json>",
	Short: "Classify an n8n workflow file and add it to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading workflow: %w", err)
		}
		doc, err := intake.ParseDocument(raw)
		if err != nil {
			return err
		}

		a, log, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer log.Sync()
		defer a.Close()

		created, err := a.Intake.Ingest(cmd.Context(), doc)
		if err != nil {
			return fmt.Errorf("ingesting workflow: %w", err)
		}
		fmt.Printf("Added %q (%s, %s) as %s\n", created.Title, created.Category, created.Difficulty, created.ID)
		return nil
	},
}

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <user-id> [email]",
	Short: "Issue a bearer token for local development",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		email := ""
		if len(args) == 2 {
			email = args[1]
		}
		token, err := auth.NewVerifier(cfg.Auth).Sign(args[0], email, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default $CONFIG_PATH or config/config.toml)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(serveCmd, migrateCmd, ingestCmd, tokenCmd)
}
