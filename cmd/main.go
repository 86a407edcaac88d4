package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"searchq/internal/config"
	"searchq/internal/db"
	"searchq/internal/handler"
	"searchq/internal/logger"
	"searchq/internal/router"
	"searchq/internal/schema"
	"searchq/internal/search"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	policyFlag := flag.String("naming", schema.SnakeCase.Name, "naming policy for external field names")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := logger.Init("."); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(*debugFlag)

	if err := db.InitPostgres(cfg.PostgresDSN); err != nil {
		logger.Error("postgres_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer db.ClosePostgres()
	logger.Info("postgres_connected", nil)

	db.InitRedis(cfg.RedisAddr)
	if err := db.PingRedis(); err != nil {
		logger.Warn("redis_unreachable", map[string]any{"error": err.Error()})
		db.RDB = nil
	}

	if err := schema.InitRegistry(cfg.SchemasDir); err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	schema.SetNameIndexCacheMaxBytes(cfg.Search.NameIndexMaxBytes)
	logger.Info("schemas_initialized", map[string]any{"entities": len(schema.Registry)})

	policy, ok := schema.PolicyByName(*policyFlag)
	if !ok {
		logger.Error("unknown_naming_policy", map[string]any{"policy": *policyFlag})
		os.Exit(1)
	}
	schema.WarmNameIndexes(context.Background(), policy, true)

	search.Configure(search.Settings{CaseSensitive: cfg.Search.CaseSensitive})
	handler.Configure(policy, true, cfg.Search.DefaultTake, cfg.Search.MaxTake)

	if err := router.InitRoutes(cfg); err != nil {
		logger.Error("router_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	logger.Info("server_start", map[string]any{"port": cfg.Port})
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Error("server_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
