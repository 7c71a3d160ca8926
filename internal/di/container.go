// Package di wires the application's components with a dig container.
package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/nhle/case-classifier/internal/classifier"
	"github.com/nhle/case-classifier/internal/controller"
	"github.com/nhle/case-classifier/internal/credential"
	"github.com/nhle/case-classifier/internal/logging"
	"github.com/nhle/case-classifier/internal/model"
	"github.com/nhle/case-classifier/internal/store"
)

// LoggerFactory builds the root logger from the logging section.
type LoggerFactory func(model.LoggingConfig) (*zap.Logger, error)

// Components are the resolved dependencies handed to the UI.
type Components struct {
	Config     *model.AppConfig
	Logger     *zap.Logger
	Client     *classifier.Client
	Controller *controller.Controller

	// Store is nil when history is disabled.
	Store *store.SQLiteStore

	// Vault is nil when no mailbox is configured or the keyring is
	// unavailable.
	Vault *credential.Vault
}

// Close releases the store and flushes the logger.
func (c *Components) Close() error {
	var err error
	if c.Store != nil {
		err = c.Store.Close()
	}
	_ = c.Logger.Sync()
	return err
}

type controllerParams struct {
	dig.In

	Config *model.AppConfig
	Logger *zap.Logger
	Client *classifier.Client
	Store  *store.SQLiteStore `optional:"true"`
}

type componentParams struct {
	dig.In

	Config     *model.AppConfig
	Logger     *zap.Logger
	Client     *classifier.Client
	Controller *controller.Controller
	Store      *store.SQLiteStore `optional:"true"`
	Vault      *credential.Vault  `optional:"true"`
}

// BuildContainer creates and configures a dependency injection container
// for cfg. A nil newLogger uses logging.New.
func BuildContainer(cfg *model.AppConfig, newLogger LoggerFactory) (*dig.Container, error) {
	if newLogger == nil {
		newLogger = logging.New
	}

	container := dig.New()

	// Register configuration
	if err := container.Provide(func() *model.AppConfig { return cfg }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(cfg *model.AppConfig) (*zap.Logger, error) {
		return newLogger(cfg.Logging)
	}); err != nil {
		return nil, err
	}

	// Register classification client
	if err := container.Provide(func(cfg *model.AppConfig, logger *zap.Logger) *classifier.Client {
		return classifier.NewClient(cfg.Service, logger)
	}); err != nil {
		return nil, err
	}

	// Register history store only when enabled
	if cfg.History.Enabled {
		if err := container.Provide(func(cfg *model.AppConfig, logger *zap.Logger) (*store.SQLiteStore, error) {
			s, err := store.NewSQLiteStore(cfg.History.DBPath)
			if err != nil {
				return nil, fmt.Errorf("opening history: %w", err)
			}
			s.SetRetention(cfg.History.Limit)
			logger.Debug("history store opened", zap.String("path", cfg.History.DBPath))
			return s, nil
		}); err != nil {
			return nil, err
		}
	}

	// Register keyring vault only when a mailbox is configured
	if cfg.Mailbox.Configured() {
		if err := container.Provide(func(logger *zap.Logger) *credential.Vault {
			vault, err := credential.Open(model.ConfigDir())
			if err != nil {
				logger.Warn("keyring unavailable, mailbox import disabled", zap.Error(err))
				return nil
			}
			return vault
		}); err != nil {
			return nil, err
		}
	}

	// Register submission controller
	if err := container.Provide(func(p controllerParams) *controller.Controller {
		ctrl := controller.New(p.Client, p.Logger, controller.Options{
			DiscardStale:   p.Config.Behavior.DiscardStaleResponses,
			StrictResponse: p.Config.Behavior.StrictResponse,
			Endpoint:       p.Client.Endpoint(),
		})
		if p.Store != nil {
			ctrl.SetRecorder(p.Store)
		}
		return ctrl
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// Resolve builds every component registered in container.
func Resolve(container *dig.Container) (*Components, error) {
	var out *Components
	err := container.Invoke(func(p componentParams) {
		out = &Components{
			Config:     p.Config,
			Logger:     p.Logger,
			Client:     p.Client,
			Controller: p.Controller,
			Store:      p.Store,
			Vault:      p.Vault,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("resolving components: %w", dig.RootCause(err))
	}
	return out, nil
}

// Build is BuildContainer followed by Resolve.
func Build(cfg *model.AppConfig, newLogger LoggerFactory) (*Components, error) {
	container, err := BuildContainer(cfg, newLogger)
	if err != nil {
		return nil, err
	}
	return Resolve(container)
}
