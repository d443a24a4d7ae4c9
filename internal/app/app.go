package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/api"
	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/config"
	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/database"
	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/services"
	"github.com/sirupsen/logrus"
)

type Application struct {
	cfg            *config.Config
	logger         *logrus.Logger
	repo           *database.Repository
	server         *api.Server
	generator      *services.PlaylistGenerator
	notifier       *services.PlaylistNotifier
	displayService *services.DisplayService
	loc            *time.Location

	stopBackground context.CancelFunc
}

func NewApplication(cfg *config.Config) (*Application, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.DebugMode {
		logger.SetLevel(logrus.DebugLevel)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	repo, err := database.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sweeper := services.NewExpirationSweeper(repo, logger,
		time.Duration(cfg.StuckItemGraceMinutes)*time.Minute)
	canvas := models.Canvas{Width: cfg.CanvasWidth, Height: cfg.CanvasHeight}
	generator := services.NewPlaylistGenerator(repo, sweeper, logger, canvas)
	notifier := services.NewPlaylistNotifier()
	displayService := services.NewDisplayService(repo, repo, generator, notifier, logger, loc,
		time.Duration(cfg.RefreshPollSeconds)*time.Second)

	server := api.NewServer(generator, displayService, notifier, loc)

	return &Application{
		cfg:            cfg,
		logger:         logger,
		repo:           repo,
		server:         server,
		generator:      generator,
		notifier:       notifier,
		displayService: displayService,
		loc:            loc,
	}, nil
}

func (a *Application) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopBackground = cancel
	go a.runRegenerationLoop(ctx)

	return a.server.Start(":" + strconv.Itoa(a.cfg.HTTPPort))
}

// runRegenerationLoop is the scheduled trigger: it sweeps, regenerates, and
// pushes the fresh playlist to every subscribed display.
func (a *Application) runRegenerationLoop(ctx context.Context) {
	interval := time.Duration(a.cfg.RegenerateIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			playlist, err := a.generator.Generate(ctx, time.Now(), a.loc)
			if err != nil {
				a.logger.WithError(err).Error("Scheduled playlist regeneration failed")
				continue
			}
			a.notifier.Publish(playlist)
			a.logger.WithField("item_count", len(playlist.Items)).
				Debug("Scheduled playlist regeneration complete")
		}
	}
}

func (a *Application) Stop(ctx context.Context) error {
	a.logger.Info("Shutting down server...")
	if a.stopBackground != nil {
		a.stopBackground()
	}
	a.displayService.StopAll()
	return a.repo.Close()
}
