// Package service wires every fetcher from configuration.
package service

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/pokerjest/tvboxfeed/internal/bilibili"
	"github.com/pokerjest/tvboxfeed/internal/cache"
	"github.com/pokerjest/tvboxfeed/internal/cmdb"
	"github.com/pokerjest/tvboxfeed/internal/config"
	"github.com/pokerjest/tvboxfeed/internal/douban"
	"github.com/pokerjest/tvboxfeed/internal/event"
	"github.com/pokerjest/tvboxfeed/internal/httpx"
	"github.com/pokerjest/tvboxfeed/internal/huantv"
	"github.com/pokerjest/tvboxfeed/internal/scheduler"
	"github.com/pokerjest/tvboxfeed/internal/update"
)

// Registry owns the shared HTTP client, cache, event bus and refresh loops
// for one process.
type Registry struct {
	Douban   *douban.Client
	Bilibili *bilibili.Client
	CMDB     *cmdb.Client
	HuanTV   *huantv.Client
	Update   *update.Client

	Diagnostics update.DiagnosticSink
	Bus         *event.InMemoryBus
	Scheduler   *scheduler.Manager
	Metrics     *prometheus.Registry

	refresh config.RefreshConfig
	loc     *time.Location
	store   cache.Store
	log     log.FieldLogger
}

func New(cfg *config.Config, logger log.FieldLogger) (*Registry, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		rs, err := cache.NewRedisStore(cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		store = rs
	default:
		store = cache.NewMemoryStore()
	}
	cm := cache.NewMetrics(reg)

	hc := httpx.NewClient(httpx.Options{
		Timeout:        cfg.HTTP.Timeout,
		ConnectTimeout: cfg.HTTP.ConnectTimeout,
		UserAgent:      cfg.HTTP.UserAgent,
		Proxy:          cfg.HTTP.Proxy,
		RateLimit:      cfg.HTTP.RateLimit,
		RateBurst:      cfg.HTTP.RateBurst,
		Brotli:         cfg.HTTP.Brotli,
		Registerer:     reg,
		Logger:         logger,
	})

	var dec update.Decrypter
	if aes, err := update.NewAESDecrypter(cfg.Update.Key, cfg.Update.IV); err != nil {
		// 密钥不对时 note 源总是拿不到清单，但其他功能不受影响
		logger.WithError(err).Warn("update decrypter disabled")
	} else {
		dec = aes
	}

	loc := cfg.TimeLocation()
	return &Registry{
		Douban:   douban.NewClient(hc, cfg.Sources.Douban, store, cm, logger),
		Bilibili: bilibili.NewClient(hc, cfg.Sources.Bilibili, store, cm, logger),
		CMDB:     cmdb.NewClient(hc, cfg.Sources.CMDB, loc, store, cm, logger),
		HuanTV:   huantv.NewClient(hc, cfg.Sources.HuanTV, logger),
		Update: update.NewClient(hc, update.Options{
			Source:    cfg.Update.Source,
			NoteURL:   cfg.Update.NoteURL,
			GitHubAPI: cfg.Sources.GitHub,
			Repo:      cfg.Update.Repo,
			Decrypter: dec,
			Logger:    logger,
		}),
		Diagnostics: update.FileSink{Dir: cfg.Update.DiagnosticsDir},
		Bus:         event.NewInMemoryBus(),
		Scheduler:   scheduler.NewManager(logger),
		Metrics:     reg,
		refresh:     cfg.Refresh,
		loc:         loc,
		store:       store,
		log:         logger,
	}, nil
}

// Location is the time zone "today" is computed in.
func (r *Registry) Location() *time.Location {
	return r.loc
}

// Close stops refresh loops and releases the cache backend.
func (r *Registry) Close() error {
	r.Scheduler.Stop()
	if rs, ok := r.store.(*cache.RedisStore); ok {
		return rs.Close()
	}
	return nil
}
