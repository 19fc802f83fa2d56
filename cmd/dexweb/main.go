package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/notjagan/dexweb/pkg/cache"
	"github.com/notjagan/dexweb/pkg/config"
	"github.com/notjagan/dexweb/pkg/dex"
	"github.com/notjagan/dexweb/pkg/pokeapi"
	"github.com/notjagan/dexweb/pkg/romhack"
	"github.com/notjagan/dexweb/pkg/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Read()
	if err != nil {
		log.Fatal(err)
	}

	store, err := cache.Open(ctx, cfg.Cache.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	d := dex.New(pokeapi.New(cfg.API.BaseURL), store, dex.Options{
		ListWindow:   cfg.ListWindow(),
		DetailWindow: cfg.DetailWindow(),
		MaxID:        cfg.Dex.MaxID,
	})

	rh, err := romhack.Load()
	if err != nil {
		log.Fatal(err)
	}

	err = server.New(cfg, d, rh).Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
}
