package main

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/harborlight/crm-calendar/internal/logger"
	googleprovider "github.com/harborlight/crm-calendar/internal/provider/google"
	"github.com/harborlight/crm-calendar/internal/rabbit"
	"github.com/harborlight/crm-calendar/internal/storagebuilder"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type SyncConfig struct {
	// Schedule is a cron expression for the batch reconciliation run.
	Schedule string `validate:"required"`
}

type Config struct {
	Logger   logger.Config
	Storage  storagebuilder.Config
	Rabbit   rabbit.Config
	Provider googleprovider.Config
	Sync     SyncConfig
}

func NewConfig(configFile string) (Config, error) {
	config := Config{}
	viper.SetConfigFile(configFile)

	viper.SetDefault("logger.level", "WARN")
	viper.SetDefault("storage.storageType", "memory")
	viper.SetDefault("rabbit.host", "127.0.0.1")
	viper.SetDefault("rabbit.port", "5672")
	viper.SetDefault("rabbit.user", "user")
	viper.SetDefault("rabbit.password", "pass")
	viper.SetDefault("rabbit.queue", "calendar.live")
	viper.SetDefault("sync.schedule", "*/15 * * * *")

	err := viper.ReadInConfig()
	if err != nil {
		return config, fmt.Errorf("failed to read config %q: %w", configFile, err)
	}
	keys := viper.AllKeys()
	for _, key := range keys {
		env := viper.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			err := viper.BindEnv(key, env[len(envConfigPrefix):])
			if err != nil {
				return config, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}
