// Command searchblockerd runs the search-blocker daemon: the storefront,
// REST and GraphQL search routes guarded by the shared validator, plus the
// admin API and Prometheus metrics.
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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	searchblocker "github.com/in-session/magento2-search-blocker"
	"github.com/in-session/magento2-search-blocker/internal/admin"
	"github.com/in-session/magento2-search-blocker/internal/auditlog"
	"github.com/in-session/magento2-search-blocker/internal/httpapi"
	"github.com/in-session/magento2-search-blocker/internal/logging"
	"github.com/in-session/magento2-search-blocker/internal/policy"
	"github.com/in-session/magento2-search-blocker/internal/version"
)

var (
	flagConfig    string
	flagListen    string
	flagPolicyDB  string
	flagPolicyDSN string
	flagAuditDB   string
	flagAuditDSN  string
	flagCacheTTL  time.Duration
)

func main() {
	root := &cobra.Command{
		Use:           "searchblockerd",
		Short:         "Search-term blocker daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	}
	serve.Flags().StringVar(&flagConfig, "config", "", "policy file (JSON/YAML); used directly or as seed for an empty policy store")
	serve.Flags().StringVar(&flagListen, "listen", ":8080", "listen address")
	serve.Flags().StringVar(&flagPolicyDB, "policy-db", "none", "policy store backend: none, sqlite, postgres")
	serve.Flags().StringVar(&flagPolicyDSN, "policy-dsn", "", "policy store DSN (file path for sqlite)")
	serve.Flags().StringVar(&flagAuditDB, "audit-db", "none", "audit log backend: none, sqlite, postgres")
	serve.Flags().StringVar(&flagAuditDSN, "audit-dsn", "", "audit log DSN (file path for sqlite)")
	serve.Flags().DurationVar(&flagCacheTTL, "policy-cache-ttl", 5*time.Second, "policy snapshot cache TTL")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "searchblockerd "+version.String())
		},
	}

	root.AddCommand(serve, versionCmd)
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := searchblocker.DefaultConfig()
	if flagConfig != "" {
		loaded, err := searchblocker.LoadConfig(flagConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := searchblocker.ValidateConfig(*loaded); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = *loaded
	}

	// Policy store: static file config, or a SQL store the admin API can
	// update at runtime (the file config then seeds the empty store).
	var store searchblocker.Store
	var cached *policy.CachedStore
	var cfgStore *policy.SQLStore
	switch flagPolicyDB {
	case "sqlite":
		s, err := policy.NewSQLiteStore(flagPolicyDSN)
		if err != nil {
			return err
		}
		defer s.Close()
		cfgStore = s
	case "postgres":
		s, err := policy.NewPostgresStore(flagPolicyDSN)
		if err != nil {
			return err
		}
		defer s.Close()
		cfgStore = s
	case "none", "":
		store = policy.NewStaticStore(cfg)
	default:
		return fmt.Errorf("unknown policy backend %q: use none, sqlite, or postgres", flagPolicyDB)
	}
	if cfgStore != nil {
		cached = policy.NewCachedStore(cfgStore, cfg, flagCacheTTL)
		store = cached
	}

	var audit auditlog.Writer = auditlog.NoopWriter{}
	var auditStore *auditlog.SQLStore
	switch flagAuditDB {
	case "sqlite":
		s, err := auditlog.NewSQLiteStore(flagAuditDSN)
		if err != nil {
			return err
		}
		defer s.Close()
		auditStore = s
		audit = s
	case "postgres":
		s, err := auditlog.NewPostgresStore(flagAuditDSN)
		if err != nil {
			return err
		}
		defer s.Close()
		auditStore = s
		audit = s
	case "none", "":
	default:
		return fmt.Errorf("unknown audit backend %q: use none, sqlite, or postgres", flagAuditDB)
	}

	validator := searchblocker.New(store)

	keyStore := admin.NewKeyStore()
	if key := os.Getenv("SEARCHBLOCKER_ADMIN_KEY"); key != "" {
		if _, err := keyStore.Adopt(key, "env", []string{admin.ScopeAdmin}); err != nil {
			return fmt.Errorf("adopt admin key: %w", err)
		}
	} else {
		created, err := keyStore.Create("bootstrap", []string{admin.ScopeAdmin})
		if err != nil {
			return fmt.Errorf("create bootstrap key: %w", err)
		}
		log.Printf("Admin API key (not persisted, set SEARCHBLOCKER_ADMIN_KEY to pin one): %s", created.Key)
	}

	r := newRouter(validator, audit, cfgStore, cached, cfg, auditStore, keyStore)

	srv := &http.Server{
		Addr:         flagListen,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down gracefully…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("searchblockerd %s listening on %s (policy=%s audit=%s)", version.Short(), flagListen, flagPolicyDB, flagAuditDB)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Server stopped.")
	return nil
}

// newRouter builds the HTTP router: guarded search routes at the root,
// admin API under /admin, plus /metrics and /healthz.
func newRouter(
	validator *searchblocker.Validator,
	audit auditlog.Writer,
	cfgStore *policy.SQLStore,
	cached *policy.CachedStore,
	defaults searchblocker.Config,
	auditStore *auditlog.SQLStore,
	keyStore *admin.KeyStore,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	api := &httpapi.Server{Validator: validator, Audit: audit}
	r.Get("/catalogsearch/result", api.Frontend)
	r.Post("/api/v1/search", api.REST)
	r.Post("/graphql", api.GraphQL)

	adminHandlers := &admin.Handlers{
		Defaults: defaults,
	}
	if cfgStore != nil {
		adminHandlers.Configs = cfgStore
	}
	if cached != nil {
		adminHandlers.Cache = cached
	}
	if auditStore != nil {
		adminHandlers.Logs = auditStore
		adminHandlers.LogAdmin = auditStore
	}
	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.AuthMiddleware(keyStore))
		r.Mount("/", adminHandlers.Routes())
	})

	return r
}
