package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/weft-dev/weft"
	"github.com/weft-dev/weft/internal/config"
	"github.com/weft-dev/weft/pkg/middleware"
	"github.com/weft-dev/weft/pkg/upload"
)

func serveCmd() *cobra.Command {
	var (
		addr    string
		envFile string
		dev     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the demo server",
		Long: `Start the demo catalog server.

Configuration comes from the environment (see internal/config for the
WEFT_* variables), optionally seeded from a dotenv file. Flags
override the environment.

Examples:
  weft-demo serve
  weft-demo serve --addr=:3000 --dev
  weft-demo serve --env=deploy/.env.staging`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, envFile, dev)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides WEFT_ADDR)")
	cmd.Flags().StringVarP(&envFile, "env", "e", "", "Dotenv file to load (default .env)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable dev mode (overrides WEFT_DEV)")

	return cmd
}

func runServe(addr, envFile string, dev bool) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if dev {
		cfg.DevMode = true
	}

	level := slog.LevelInfo
	if cfg.DevMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}

	app, err := weft.New(weft.Config{
		Addr:   cfg.Addr,
		Static: weft.StaticConfig{Dir: cfg.StaticDir},
		Upload: weft.UploadConfig{
			Store:       store,
			Dir:         cfg.UploadDir,
			MaxFileSize: cfg.MaxUploadBytes,
			TempExpiry:  cfg.UploadTTL,
		},
		DevMode: cfg.DevMode,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	app.Use(middleware.OpenTelemetry(), middleware.Prometheus())
	registerPages(app, cfg)

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", app.Handler())

	srv := &http.Server{Addr: cfg.Addr, Handler: r}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutCtx); err != nil {
			warn("session shutdown: %s", err)
		}
		if err := srv.Shutdown(shutCtx); err != nil {
			warn("http shutdown: %s", err)
		}
	}()

	printBanner()
	info("listening on %s", cfg.Addr)
	info("upload store: %s", cfg.Store)
	info("product API: %s", cfg.ProductAPI)
	info("metrics: /metrics")
	if cfg.DevMode {
		warn("dev mode: origin checks and caching disabled")
	}
	fmt.Println()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	success("Goodbye")
	return nil
}

// buildStore returns the configured upload store. For the disk
// backend it returns nil so the framework builds its default disk
// store from Upload.Dir.
func buildStore(cfg *config.Config) (upload.Store, error) {
	if cfg.Store != config.StoreS3 {
		return nil, nil
	}

	// Static credentials from the conventional AWS env variables; the
	// demo deliberately avoids the SDK's config loader module.
	awsCfg := aws.Config{
		Region: cfg.S3Region,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			id := os.Getenv("AWS_ACCESS_KEY_ID")
			secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
			if id == "" || secret == "" {
				return aws.Credentials{}, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set for the s3 store")
			}
			return aws.Credentials{
				AccessKeyID:     id,
				SecretAccessKey: secret,
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "environment",
			}, nil
		}),
	}
	client := s3.NewFromConfig(awsCfg)
	return upload.NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix, cfg.MaxUploadBytes), nil
}
