package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"account-hub/internal/audit"
	"account-hub/internal/auth"
	"account-hub/internal/config"
	"account-hub/internal/metrics"
	"account-hub/internal/middleware"
	"account-hub/internal/router"
	"account-hub/internal/service"
	"account-hub/internal/session"
	"account-hub/internal/store"
	"account-hub/internal/util"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Store.FilePath)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := ensureDir(filepath.Dir(cfg.Audit.File)); err != nil {
		log.Fatalf("create audit dir: %v", err)
	}
	if err := ensureDir(cfg.Backup.Dir); err != nil {
		log.Fatalf("create backup dir: %v", err)
	}

	// open the credential store
	var st store.Store
	switch cfg.Store.Backend {
	case "sqlite":
		st, err = store.OpenGormStore(cfg.Store.SQLitePath, cfg.Store.LogMode)
	default:
		st, err = store.OpenFileStore(cfg.Store.FilePath)
	}
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	// signing secret: config.Validate already failed closed for release mode,
	// so an empty secret here means local development
	secret := cfg.JWT.Secret
	if secret == "" {
		secret, err = util.RandomString(48)
		if err != nil {
			log.Fatalf("generate dev secret: %v", err)
		}
		log.Printf("WARNING: jwt.secret unset, using an ephemeral secret; sessions will not survive a restart")
	}

	issuer := session.NewIssuer(secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpireHours)*time.Hour)
	hasher := auth.NewHasher(cfg.Security.BcryptCost)
	svc := service.NewAccountService(st, issuer, hasher, cfg.Security.PrivilegedNames)

	trail, err := audit.Open(cfg.Audit.File)
	if err != nil {
		log.Fatalf("open audit trail: %v", err)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)
	defer limiter.Stop()

	r := router.Setup(router.Deps{
		Config:    cfg,
		Store:     st,
		Service:   svc,
		Trail:     trail,
		Collector: collector,
		Gatherer:  registry,
		Limiter:   limiter,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s (store backend: %s)", addr, cfg.Store.Backend)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
