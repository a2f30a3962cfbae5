// Package services wires the domain services onto one database handle.
package services

import (
	"coursehub/config"
	"coursehub/services/bunny"
	"coursehub/services/leaderboard"
	"coursehub/services/videos"
	"coursehub/services/wallet"
	"coursehub/utils"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Container struct {
	Leaderboard *leaderboard.Engine
	Videos      *videos.Coordinator
	Wallet      *wallet.Service
	Mailer      utils.Mailer
}

// App is the process-wide container, populated by Init.
var App Container

type Options struct {
	Video     videos.Config
	Providers videos.ProviderFactory
	Mailer    utils.Mailer
	BunnyURL  string
}

// New builds a container. A nil provider factory talks to the real Bunny API.
func New(db *gorm.DB, log logrus.FieldLogger, opts Options) Container {
	providers := opts.Providers
	if providers == nil {
		pool := bunny.NewPool(bunny.WithBaseURL(opts.BunnyURL))
		providers = func(creds bunny.Credentials) videos.Provider {
			return pool.Client(creds)
		}
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = utils.LogMailer{}
	}

	return Container{
		Leaderboard: leaderboard.NewEngine(db, log.WithField("component", "leaderboard")),
		Videos:      videos.NewCoordinator(db, providers, opts.Video, log.WithField("component", "videos")),
		Wallet:      wallet.NewService(db, log.WithField("component", "wallet")),
		Mailer:      mailer,
	}
}

func Init(db *gorm.DB, log logrus.FieldLogger, opts Options) {
	App = New(db, log, opts)
}

// OptionsFromConfig reads the video host and mail settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Video: videos.Config{
			Defaults:   bunny.Credentials{LibraryID: cfg.BunnyLibraryID, APIKey: cfg.BunnyAPIKey},
			SigningKey: cfg.BunnySigningKey,
			EmbedURL:   cfg.BunnyEmbedURL,
			TokenTTL:   time.Duration(cfg.PlaybackTokenTTL) * time.Second,
		},
		Mailer:   utils.NewMailer(cfg.SendgridAPIKey, cfg.EmailSender),
		BunnyURL: cfg.BunnyAPIURL,
	}
}
