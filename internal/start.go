package internal

import (
	"github.com/cyking/JsonRPC/pkg/config"
	"github.com/cyking/JsonRPC/internal/server"
	"os"
	"os/signal"
	"syscall"
	"time"
	"github.com/cyking/JsonRPC/pkg/log"
	"github.com/cyking/JsonRPC/internal/audit"
	"github.com/cyking/JsonRPC/internal/cache"
	"github.com/cyking/JsonRPC/internal/gate"
	"github.com/cyking/JsonRPC/pkg/jsonrpc"
	"net/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	)

func Start(cfg *config.Config) error {
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	logger := log.NewLog("")
	log.SetLevelStr(cfg.LogLevel)

	if cfg.EnablePrometheus {
		logger.Info("Prometheus metrics enabled, listening on port 2112")
		http.Handle("/metrics", promhttp.Handler())
		go http.ListenAndServe(":2112", nil)
	}

	var auditor audit.Auditor
	if cfg.LogAuditorConfig != nil {
		var err error
		auditor, err = audit.NewLogAuditor(cfg.LogAuditorConfig)
		if err != nil {
			return err
		}
	} else {
		auditor = audit.NewNopAuditor()
	}

	var store *cache.ResultStore
	var cacher cache.Cacher
	if cfg.ResultCacheConfig != nil {
		if cfg.RedisConfig != nil {
			cacher = cache.NewRedisCacher(cfg.RedisConfig)
		} else {
			logger.Info("no redis configured, result cache is process-local")
			cacher = cache.NewMemoryCacher()
		}
		if err := cacher.Start(); err != nil {
			return err
		}
		ttl := time.Duration(cfg.ResultCacheConfig.TTLSeconds) * time.Second
		store = cache.NewResultStore(cacher, cfg.ResultCacheConfig.Methods, ttl)
	}

	registry := DefaultRegistry()
	dispatcher := jsonrpc.NewDispatcher(registry, cfg.DetectOutputErrors, cfg.BatchConcurrency)
	gatekeeper := gate.NewGatekeeper(cfg.AllowedHosts, cfg.BasicAuthUsers)

	srv := server.NewServer(dispatcher, gatekeeper, auditor, store, cfg)
	if err := srv.Start(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	done := make(chan bool, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigs
		logger.Info("interrupted, shutting down")
		if err := srv.Stop(); err != nil {
			logger.Error("failed to stop rpc server", "err", err)
		}
		if cacher != nil {
			if err := cacher.Stop(); err != nil {
				logger.Error("failed to stop cacher", "err", err)
			}
		}
		done <- true
	}()

	<-done
	logger.Info("goodbye")
	return nil
}
