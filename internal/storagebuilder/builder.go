package storagebuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/harborlight/crm-calendar/internal/prefs"
	memoryprefs "github.com/harborlight/crm-calendar/internal/prefs/memory"
	sqlprefs "github.com/harborlight/crm-calendar/internal/prefs/sql"
	"github.com/harborlight/crm-calendar/internal/record"
	memorystorage "github.com/harborlight/crm-calendar/internal/record/memory"
	sqlstorage "github.com/harborlight/crm-calendar/internal/record/sql"
)

type Config struct {
	StorageType string
	Database    sqlstorage.Config
}

func New(config Config) (record.Store, error) {
	switch config.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "sql":
		s := sqlstorage.New(config.Database)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := s.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database %s %d: %w", config.Database.Host, config.Database.Port, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type %s", config.StorageType)
	}
}

type PrefsConfig struct {
	StorageType string
	Database    sqlprefs.Config
}

func NewPrefs(config PrefsConfig) (prefs.Store, error) {
	switch config.StorageType {
	case "memory":
		return memoryprefs.New(), nil
	case "sql":
		s := sqlprefs.New(config.Database)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := s.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database %s %d: %w", config.Database.Host, config.Database.Port, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type %s", config.StorageType)
	}
}
