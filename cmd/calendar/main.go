package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborlight/crm-calendar/internal/app"
	"github.com/harborlight/crm-calendar/internal/ident"
	"github.com/harborlight/crm-calendar/internal/logger"
	googleprovider "github.com/harborlight/crm-calendar/internal/provider/google"
	"github.com/harborlight/crm-calendar/internal/rabbit"
	internalhttp "github.com/harborlight/crm-calendar/internal/server/http"
	"github.com/harborlight/crm-calendar/internal/storagebuilder"
	"github.com/harborlight/crm-calendar/internal/syncer"
	log "github.com/sirupsen/logrus"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "./configs/config.yaml", "Path to configuration file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	config, err := NewConfig(configFile)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	err = logger.PrepareLogger(config.Logger)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	store, err := storagebuilder.New(config.Storage)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	prefStore, err := storagebuilder.NewPrefs(config.Prefs)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}

	reconciler := syncer.New(store, googleprovider.New(config.Provider), ident.UUID{})
	calendar := app.New(store, prefStore, reconciler)
	server := internalhttp.NewServer(config.HTTPServer, calendar)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	// Live-update consumer: pushed records flow into open views, where
	// privacy scoping is applied again before display.
	live := rabbit.New(config.Rabbit)
	if err := live.Connect(); err != nil {
		log.Errorf("live updates unavailable: %v", err)
	} else {
		defer live.Close()
		go func() {
			err := live.Consume(ctx, func(m rabbit.Message) {
				calendar.Views.Broadcast(ctx, m.Appointment)
			})
			if err != nil {
				log.Errorf("live update consumer stopped: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			log.Error("failed to stop http server: " + err.Error())
		}
	}()

	log.Info("calendar is running...")

	if err := server.Start(ctx); err != nil {
		log.Error("failed to start http server: " + err.Error())
		cancel()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()
		err := store.Close(ctx)
		if err != nil {
			log.Errorf("failed to close storage: %v", err)
		}
		os.Exit(1) //nolint:gocritic
	}
	ctx, cancel = context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	err = store.Close(ctx)
	if err != nil {
		log.Errorf("failed to close storage: %v", err)
	}
}
