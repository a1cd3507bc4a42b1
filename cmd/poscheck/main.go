package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tiendafacil/pos-core/internal/catalog"
	"github.com/tiendafacil/pos-core/internal/posapi"
	"github.com/tiendafacil/pos-core/pkg/config"
	"github.com/tiendafacil/pos-core/pkg/logger"
)

// poscheck is an operator smoke tool: it loads the environment, builds the
// POS API client and reports how much catalog the tenant can see.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "poscheck"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "poscheck",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithTenantID(ctx, cfg.Tenant.TenantID)

	client, err := posapi.NewClient(cfg.API.BaseURL, posapi.Credentials{
		Token:    cfg.Auth.Token,
		TenantID: cfg.Tenant.TenantID,
	}, posapi.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}))
	requireResource(ctx, logg, "pos api client", err)

	normalizer, err := catalog.NewNormalizer(client, logg)
	requireResource(ctx, logg, "catalog normalizer", err)

	snapshot := normalizer.Load(ctx)

	logg.Info(logg.WithFields(ctx, map[string]any{
		"products":   len(snapshot.Products),
		"services":   len(snapshot.Services),
		"composites": len(snapshot.Composites),
		"clients":    len(snapshot.Clients),
		"providers":  len(snapshot.Providers),
	}), "catalog reachable")
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(ctx, fmt.Sprintf("failed to initialize %s", name), err)
		os.Exit(1)
	}
}
