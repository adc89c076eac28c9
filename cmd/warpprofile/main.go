package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samrat1446/farcaster-mini-app/internal/cascade"
	"github.com/samrat1446/farcaster-mini-app/internal/engine"
	"github.com/samrat1446/farcaster-mini-app/internal/handlers"
	"github.com/samrat1446/farcaster-mini-app/internal/provider"
	"github.com/samrat1446/farcaster-mini-app/internal/provider/neynar"
	"github.com/samrat1446/farcaster-mini-app/internal/provider/quotient"
	"github.com/samrat1446/farcaster-mini-app/internal/provider/warpcast"
	"github.com/samrat1446/farcaster-mini-app/internal/streaks"
	"github.com/samrat1446/farcaster-mini-app/pkg/cache"
	"github.com/samrat1446/farcaster-mini-app/pkg/config"
	"github.com/samrat1446/farcaster-mini-app/pkg/logging"
	"github.com/samrat1446/farcaster-mini-app/pkg/monitoring"
	redisclient "github.com/samrat1446/farcaster-mini-app/pkg/redis"
	"github.com/samrat1446/farcaster-mini-app/pkg/server"
	"github.com/samrat1446/farcaster-mini-app/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("warpprofile")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting WarpProfile (Reputation Scoring Engine)")

	providerTimeout := config.GetEnvDuration("PROVIDER_TIMEOUT", 30*time.Second)

	// === Provider Construction ===
	// Fallback priority is configuration, not code: reorder or drop
	// providers via PROVIDER_ORDER without touching the cascade.
	providerOrder := config.GetEnvList("PROVIDER_ORDER", []string{
		neynar.ProviderName,
		quotient.ProviderName,
		warpcast.ProviderName,
	})

	var providers []provider.Provider
	for _, name := range providerOrder {
		switch name {
		case neynar.ProviderName:
			providers = append(providers, neynar.NewClient(neynar.Config{
				APIKey:  config.RequireEnv("NEYNAR_API_KEY"),
				BaseURL: config.GetEnv("NEYNAR_BASE_URL", ""),
				Timeout: providerTimeout,
				Logger:  logger,
			}))
		case quotient.ProviderName:
			providers = append(providers, quotient.NewClient(quotient.Config{
				APIKey:  config.RequireEnv("QUOTIENT_API_KEY"),
				BaseURL: config.GetEnv("QUOTIENT_BASE_URL", ""),
				Timeout: providerTimeout,
				Logger:  logger,
			}))
		case warpcast.ProviderName:
			providers = append(providers, warpcast.NewClient(warpcast.Config{
				BaseURL: config.GetEnv("WARPCAST_BASE_URL", ""),
				Timeout: providerTimeout,
				Logger:  logger,
			}))
		default:
			logger.WithField("provider", name).Fatal("Unknown provider in PROVIDER_ORDER")
		}
	}

	// === Cascade & Engine ===
	retryCfg := cascade.DefaultRetryConfig()
	retryCfg.MaxAttempts = config.GetEnvInt("RETRY_MAX_ATTEMPTS", 3)
	retryCfg.BaseDelay = config.GetEnvDuration("RETRY_BASE_DELAY", 500*time.Millisecond)

	fallback, err := cascade.New(cascade.Config{
		Providers: providers,
		Retry:     retryCfg,
		Logger:    logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to build provider cascade")
	}

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("warpprofile", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("warpprofile", version.Version, version.GitCommit)
	attemptCounter, cascadeDuration, spamVerdicts := metricsCollector.CreateScoringMetrics()

	eng := engine.New(fallback, logger, engine.Metrics{
		ProviderAttempts: attemptCounter,
		CascadeDuration:  cascadeDuration,
		SpamVerdicts:     spamVerdicts,
	})

	// === Streak Store ===
	// Redis when configured, in-memory otherwise. The in-memory store
	// loses streaks on restart; fine for single-replica development.
	var streakStore streaks.Store
	redisAddrs := config.GetEnvList("REDIS_ADDR", nil)
	if len(redisAddrs) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := redisclient.NewUniversalClient(ctx, redisclient.Config{
			Addrs:    redisAddrs,
			Username: config.GetEnv("REDIS_USERNAME", ""),
			Password: config.GetEnv("REDIS_PASSWORD", ""),
			DB:       config.GetEnvInt("REDIS_DB", 0),
		})
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer client.Close()
		streakStore = streaks.NewRedisStore(client)
		healthChecker.AddCheck("redis", monitoring.RedisHealthCheck(client))
	} else {
		logger.Warn("REDIS_ADDR not set, streaks held in memory")
		streakStore = streaks.NewMemoryStore()
		healthChecker.AddCheck("redis", monitoring.RedisHealthCheck(nil))
	}
	streakMgr := streaks.NewManager(streakStore)

	// === Health Checks ===
	requiredConfig := map[string]string{}
	for _, p := range providers {
		switch p.Name() {
		case neynar.ProviderName:
			requiredConfig["NEYNAR_API_KEY"] = config.GetEnv("NEYNAR_API_KEY", "")
		case quotient.ProviderName:
			requiredConfig["QUOTIENT_API_KEY"] = config.GetEnv("QUOTIENT_API_KEY", "")
		case warpcast.ProviderName:
			healthChecker.AddCheck("warpcast_reachability",
				monitoring.ProviderHealthCheck(warpcast.ProviderName, config.GetEnv("WARPCAST_BASE_URL", "https://api.warpcast.com")+"/v2/user?fid=1"))
		}
	}
	healthChecker.AddCheck("configuration", monitoring.ConfigurationHealthCheck(requiredConfig))

	// === Server Setup ===
	router := server.SetupRouter(logger)
	router.Use(metricsCollector.MetricsMiddleware())

	router.GET("/health", healthChecker.Handler())
	router.GET("/metrics", metricsCollector.Handler())
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "running",
			"version":  version.Version,
			"breakers": eng.BreakerStates(),
		})
	})

	profileCache := cache.New(handlers.CacheOptions(), cache.MetricsHooks{})
	h := handlers.New(eng, streakMgr, profileCache, logger)
	h.RegisterRoutes(router)

	serverConfig := server.DefaultConfig("warpprofile", "18090")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
}
