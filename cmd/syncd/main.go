package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborlight/crm-calendar/internal/ident"
	"github.com/harborlight/crm-calendar/internal/logger"
	googleprovider "github.com/harborlight/crm-calendar/internal/provider/google"
	"github.com/harborlight/crm-calendar/internal/rabbit"
	"github.com/harborlight/crm-calendar/internal/record"
	"github.com/harborlight/crm-calendar/internal/storagebuilder"
	"github.com/harborlight/crm-calendar/internal/syncer"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "./configs/syncd_config.yaml", "Path to configuration file")
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
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()
		store.Close(ctx)
	}()

	live := rabbit.New(config.Rabbit)
	if err := live.Connect(); err != nil {
		log.Errorf("failed to connect to rabbit: %v", err)
		return
	}
	defer live.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	reconciler := syncer.New(store, googleprovider.New(config.Provider), ident.UUID{})
	reconciler.OnMirrorCreated = func(a record.Appointment) {
		if err := live.Publish(rabbit.Message{Appointment: a}); err != nil {
			log.Errorf("failed to publish live update: %v", err)
		}
	}

	runBatch := func() {
		result, err := reconciler.SyncAll(ctx)
		if err != nil {
			log.Errorf("batch sync failed: %v", err)
			return
		}
		log.WithField("created", result.Created).
			WithField("updated", result.Updated).
			WithField("deleted", result.Deleted).
			Info("batch sync finished")
	}

	c := cron.New()
	if _, err := c.AddFunc(config.Sync.Schedule, runBatch); err != nil {
		log.Errorf("invalid sync schedule %q: %v", config.Sync.Schedule, err)
		return
	}

	log.Info("syncd is running...")
	runBatch()
	c.Start()

	<-ctx.Done()
	stop := c.Stop()
	<-stop.Done()
}
