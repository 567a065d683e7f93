package main

import (
	"chatcal/app/client/firebase"
	"chatcal/app/client/gemini"
	"chatcal/app/client/line"
	"chatcal/app/config"
	"chatcal/app/server"
	"chatcal/app/service/dialog"
	"chatcal/app/service/store"
	"chatcal/app/util/mylog"
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, line.NewClient)
	do.Provide(di, firebase.NewClient)
	do.Provide(di, gemini.NewClient)
	do.Provide(di, store.New)
	do.Provide(di, dialog.New)
	do.Provide(di, server.New)

	slog.Info("Service started", "mode", cfg.Bot.Mode)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go func() {
		if err := do.MustInvoke[*server.Service](di).Run(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-appCtx.Done()
}
