package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"smm-storefront/internal/catalog"
	"smm-storefront/internal/config"
	pg "smm-storefront/internal/infra/db/postgres"
)

// Creates the schema and prints the active service catalog.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	fmt.Println("schema ready.")

	fmt.Printf("active provider: %s\n", cfg.Providers.Active)
	for _, e := range catalog.Default().Entries() {
		fmt.Printf("  %-9s %-10s %-12s -> %d\n", e.Provider, e.Platform, e.Service, e.ServiceID)
	}
}
