package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	httpapi "securedeal/internal/http"
	"securedeal/internal/platform/config"
	"securedeal/internal/platform/httpserver"
	"securedeal/internal/platform/kafka"
	"securedeal/internal/platform/logger"
	"securedeal/internal/platform/redis"
	"securedeal/internal/validation/audit"
	"securedeal/internal/validation/engine"
	"securedeal/internal/validation/gateway"
	"securedeal/internal/validation/handler"
	"securedeal/internal/validation/metrics"
	"securedeal/internal/validation/providers"
	"securedeal/internal/validation/rules"
	"securedeal/internal/validation/service"
	"securedeal/internal/validation/sink"
	id "securedeal/pkg/domain"
)

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal/validation packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	checks := map[string]httpapi.HealthCheck{}

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		checks["postgres"] = db.PingContext
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
	}

	m := metrics.New()
	engineCfg := rules.SeedSchedule()

	var ruleStore rules.Store
	if db != nil {
		store := rules.NewPostgresStore(db)
		if err := seedRuleStore(ctx, store); err != nil {
			log.Error("seed rule store", "error", err)
			os.Exit(1)
		}
		ruleStore = store
	} else {
		ruleStore = rules.NewInMemoryStore(rules.SeedRules()...)
	}

	registry := rules.NewRegistry(ruleStore, engineCfg, log)
	if _, err := registry.Reload(ctx); err != nil {
		log.Error("load rule snapshot", "error", err)
		os.Exit(1)
	}

	var cache gateway.Cache
	if redisClient != nil {
		cache = gateway.NewRedisCache(redisClient)
	} else {
		cache = gateway.NewMemoryCache()
	}

	gw := gateway.New(buildProviders(cfg), cache, engineCfg, log, m)
	eng := engine.New(registry, gw, log, m)

	var runStore sink.Store = sink.NewInMemoryStore()
	var auditStore audit.Store = audit.NewInMemoryStore()
	if db != nil {
		runStore = sink.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	}

	var emitters []sink.Emitter
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		emitters = append(emitters, sink.NewKafkaEmitter(producer))
	}

	auditInbox := make(chan audit.Event, 256)
	auditCtx, stopAudit := context.WithCancel(ctx)
	defer stopAudit()
	go func() { _ = audit.NewWorker(auditStore, auditInbox, log).Run(auditCtx) }()

	svc := service.New(eng, registry,
		sink.New(runStore, log, emitters...),
		audit.NewPublisher(auditStore).WithInbox(auditInbox),
		log)

	router := httpapi.NewRouter(log, handler.New(svc, log), checks)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting securedeal validation service", "addr", cfg.Addr,
		"rules", len(registry.Current().Rules), "snapshot", registry.Current().Hash)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// seedRuleStore loads the built-in catalog on first boot. Existing rules are
// left untouched.
func seedRuleStore(ctx context.Context, store *rules.PostgresStore) error {
	existing, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, def := range rules.SeedRules() {
		if err := store.Put(ctx, def); err != nil {
			return err
		}
	}
	return nil
}

func buildProviders(cfg config.Server) map[id.SourceKind]gateway.Provider {
	if cfg.StubProviders {
		return providers.StubSet(50 * time.Millisecond)
	}
	p := cfg.Providers
	set := map[id.SourceKind]gateway.Provider{}
	if p.CompanyRegistryURL != "" {
		set[id.SourceCompanyRegistry] = providers.NewCompanyRegistry(p.CompanyRegistryURL, p.Timeout)
	}
	if p.VATRegistryURL != "" {
		set[id.SourceVATRegistry] = providers.NewVATRegistry(p.VATRegistryURL, p.Timeout)
	}
	if p.BlacklistURL != "" {
		set[id.SourceBlacklist] = providers.NewBlacklist(p.BlacklistURL, p.Timeout)
	}
	return set
}
