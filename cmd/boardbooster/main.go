package main

import (
	"fmt"
	"log"

	"github.com/teamhackers/boardbooster/bot"
	"github.com/teamhackers/boardbooster/catalog"
	"github.com/teamhackers/boardbooster/core/bootstrap"
	"github.com/teamhackers/boardbooster/core/buildinfo"
	corecmd "github.com/teamhackers/boardbooster/core/cmd"
	coreconfig "github.com/teamhackers/boardbooster/core/config"
	"github.com/teamhackers/boardbooster/storage"
	"github.com/teamhackers/boardbooster/users"
)

func main() {
	log.Printf("boardbooster %s (%s)", buildinfo.Version, buildinfo.Commit)
	if err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yml",
		Bootstrap:         buildApp,
	}); err != nil {
		log.Fatalf("boardbooster: %v", err)
	}
}

func buildApp(cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
	res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}

	files, err := storage.NewLocal(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("storage init: %w", err)
	}

	store := catalog.NewPostgresStore(res.DB)
	registry := users.NewPostgresRegistry(res.DB)

	return bot.New(cfg, store, registry, files), nil
}
