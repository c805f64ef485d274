package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/rs/cors"

	"property-hierarchy/internal/api"
	"property-hierarchy/internal/auth"
	"property-hierarchy/internal/config"
	"property-hierarchy/internal/registry"
	nodesvc "property-hierarchy/internal/services/nodes"
	"property-hierarchy/internal/storage/block"
	"property-hierarchy/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	storage, err := block.NewFactory().Create(snapshotStorageConfig(cfg))
	if err != nil {
		log.Fatalf("failed to create snapshot storage: %v", err)
	}

	nodeStore := store.NewMemoryStore(store.NewJSONSnapshots(storage, cfg.Snapshot.Path))
	if err := nodeStore.Load(context.Background()); err != nil {
		log.Fatalf("failed to load node snapshot: %v", err)
	}

	users := registry.NewUserRegistry(cfg.Users.DataFile, cfg.Auth.BcryptCost)
	if err := users.Load(); err != nil {
		log.Fatalf("failed to load user registry: %v", err)
	}

	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.TokenTTL())

	router := api.NewRouter(api.Dependencies{
		Tokens: tokens,
		Users:  users,
		Nodes:  nodesvc.NewService(nodeStore),
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Server.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("starting property hierarchy API on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server failed to start: %v", err)
	}
}

func snapshotStorageConfig(cfg *config.Config) block.Config {
	return block.Config{
		Type:    cfg.Snapshot.Backend,
		BaseDir: cfg.Snapshot.BaseDir,
		Options: map[string]string{
			"bucket": cfg.Snapshot.Bucket,
			"region": cfg.Snapshot.Region,
			"prefix": cfg.Snapshot.Prefix,
		},
	}
}
