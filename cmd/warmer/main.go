package main

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tour_map/internal/adapters/observability"
	redisad "tour_map/internal/adapters/redis"
	"tour_map/internal/adapters/ticketmaster"
	"tour_map/internal/app"
	"tour_map/internal/shared"
	mysqlrepo "tour_map/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.MustLoad()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Int("workers", cfg.WarmWorkers).
		Int("top_n", cfg.WarmTopN).
		Int("seeds", len(cfg.WarmKeywords)).
		Msg("warmer starting")

	if cfg.TMAPIKey == "" {
		log.Fatal().Msg("TM_API_KEY not configured")
	}
	if cfg.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR is required; warming without a cache is pointless")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	keywords := append([]string{}, cfg.WarmKeywords...)

	// 2) most searched keywords from the search log
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		repo := mysqlrepo.New(db)

		top, err := repo.TopKeywords(ctx, time.Now().Add(-cfg.WarmSince), cfg.WarmTopN)
		if err != nil {
			log.Fatal().Err(err).Msg("top keywords failed")
		}
		for _, kc := range top {
			keywords = append(keywords, kc.Keyword)
		}

		if cfg.LogRetention > 0 {
			n, err := repo.Purge(ctx, time.Now().Add(-cfg.LogRetention))
			if err != nil {
				log.Warn().Err(err).Msg("search log purge failed")
			} else {
				log.Info().Int64("rows", n).Msg("search log purged")
			}
		}
	}
	keywords = dedupe(keywords)

	// searches are not logged while warming
	events := app.NewEventsService(
		ticketmaster.New(cfg.TMBaseURL, cfg.TMRPS, cfg.TMTimeout),
		cache, nil, cfg.TMAPIKey, cfg.CacheTTL,
	)

	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup
	var failed int32

	for _, kw := range keywords {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(keyword string) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := events.Warm(ctx, keyword)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				log.Warn().Str("keyword", keyword).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("keyword", keyword).Int("suggestions", n).Msg("warm ok")
		}(kw)
	}

	wg.Wait()
	log.Info().Int("keywords", len(keywords)).Int32("failed", failed).Msg("warming completed")
}

// dedupe keeps the first spelling of each keyword, ignoring case.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, k := range in {
		k = strings.TrimSpace(k)
		key := strings.ToLower(k)
		if len([]rune(k)) < app.MinKeywordLen || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
	}
	return out
}
