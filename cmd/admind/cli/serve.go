package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kubhq/admind/internal/mailer"
	"github.com/kubhq/admind/internal/server"
	"github.com/kubhq/admind/internal/server/middleware"
	"github.com/kubhq/admind/internal/service"
	"github.com/kubhq/admind/internal/store"
	"github.com/kubhq/admind/internal/telemetry"
	"github.com/kubhq/admind/internal/validate"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin management API server",
		Long:  "Start the HTTP server that exposes the super-admin-guarded admin account API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(dev bool) error {
	logger := newLogger(dev)

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("store ready", "driver", viper.GetString("store.driver"))

	verify, err := resolveVerifier(st)
	if err != nil {
		return err
	}

	m := buildMailer(logger)
	signer := buildInviteSigner(logger)

	bounds := validate.Bounds{
		Min: viper.GetInt("validation.middle_name_min"),
		Max: viper.GetInt("validation.middle_name_max"),
	}
	svc := service.NewAdminService(st, m, signer, bounds, logger)

	cfg := server.DefaultConfig()
	cfg.Host = viper.GetString("server.host")
	cfg.Port = viper.GetInt("server.port")
	cfg.ShutdownTimeout = viper.GetDuration("server.shutdown_timeout")
	cfg.CORSOrigins = viper.GetStringSlice("server.cors.origins")
	cfg.RateLimitPerMinute = viper.GetInt("server.rate_limit_per_minute")
	cfg.Version = appVersion

	srv := server.New(cfg, st, svc, verify, logger)

	tracker := telemetry.New(context.Background(), st, func() telemetry.Properties {
		count, _ := st.CountAdmins(context.Background())
		return telemetry.Properties{
			Version:     appVersion,
			GoVersion:   runtime.Version(),
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			StoreDriver: viper.GetString("store.driver"),
			Admins:      count,
			MailMode:    viper.GetString("mail.mode"),
		}
	})
	if tracker != nil {
		telemetry.PrintNotice()
		tracker.Start()
		defer tracker.Shutdown()
	}

	fmt.Printf("→ admind %s\n", appVersion)
	fmt.Printf("→ Listening on http://%s:%d\n", cfg.Host, cfg.Port)
	fmt.Printf("→ OpenAPI:  http://%s:%d/openapi.json\n", cfg.Host, cfg.Port)
	fmt.Printf("→ Health:   http://%s:%d/healthz\n", cfg.Host, cfg.Port)
	fmt.Println()

	return srv.ListenAndServe()
}

func newLogger(dev bool) *slog.Logger {
	level := slog.LevelInfo
	if dev || viper.GetString("logging.level") == "debug" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if viper.GetString("logging.format") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// openStore opens the configured store. The sqlite driver defaults to a
// file under ~/.admind so records survive restarts.
func openStore() (*store.Store, error) {
	opts := store.Options{
		Driver:  viper.GetString("store.driver"),
		DSN:     viper.GetString("store.dsn"),
		DataDir: viper.GetString("store.data_dir"),
	}
	if opts.Driver == "" || opts.Driver == "sqlite" {
		if opts.DataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve home dir: %w", err)
			}
			opts.DataDir = filepath.Join(home, ".admind")
		}
		if err := os.MkdirAll(opts.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return store.Open(opts)
}

// resolveVerifier picks the super-admin credential check: a plaintext key
// from config/env wins, otherwise the hashed key stored via `admind key set`.
// Refusing to start without either beats serving an API nobody can call.
func resolveVerifier(st *store.Store) (middleware.Verifier, error) {
	if key := viper.GetString("auth.super_admin_key"); key != "" {
		return middleware.StaticKey(key), nil
	}

	hash, err := st.GetSetting(context.Background(), "super_admin_key_hash")
	if err != nil {
		return nil, fmt.Errorf("read key hash: %w", err)
	}
	if hash != "" {
		return middleware.HashedKey(hash), nil
	}

	return nil, fmt.Errorf("no super-admin key configured: set ADMIND_AUTH_SUPER_ADMIN_KEY or run 'admind key set'")
}

func buildMailer(logger *slog.Logger) mailer.Mailer {
	failDomains := viper.GetStringSlice("mail.fail_domains")

	if viper.GetString("mail.mode") == "smtp" {
		return &mailer.SMTP{
			Addr:        viper.GetString("mail.addr"),
			From:        viper.GetString("mail.from"),
			Timeout:     viper.GetDuration("mail.timeout"),
			FailDomains: failDomains,
		}
	}
	return &mailer.Log{Logger: logger, FailDomains: failDomains}
}

func buildInviteSigner(logger *slog.Logger) *service.InviteSigner {
	secret := viper.GetString("auth.invite_secret")
	if secret == "" {
		secret = "admind-dev-secret-change-me"
		logger.Warn("auth.invite_secret not set, using development default")
	}

	ttl := viper.GetDuration("auth.invite_ttl")
	if ttl == 0 {
		ttl = 72 * time.Hour
	}
	return service.NewInviteSigner(secret, viper.GetString("auth.invite_base_url"), ttl)
}
