package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
	"github.com/sirupsen/logrus"
)

// DisplayStore is the registry half of the catalog.
type DisplayStore interface {
	GetDisplay(ctx context.Context, id int) (*models.Display, error)
	ListDisplays(ctx context.Context) ([]*models.Display, error)
}

type runningDisplay struct {
	controller *PlaybackController
	cancel     context.CancelFunc
}

// DisplayService keeps the map of running playback controllers, one per
// display. Stopping a display cancels both its countdown timer and its
// refresh subscription so nothing leaks or double-deletes.
type DisplayService struct {
	store        DisplayStore
	catalog      Catalog
	generator    *PlaylistGenerator
	notifier     *PlaylistNotifier
	logger       *logrus.Logger
	loc          *time.Location
	pollInterval time.Duration

	mu      sync.Mutex
	running map[int]*runningDisplay
}

func NewDisplayService(store DisplayStore, catalog Catalog, generator *PlaylistGenerator,
	notifier *PlaylistNotifier, logger *logrus.Logger, loc *time.Location,
	pollInterval time.Duration) *DisplayService {

	return &DisplayService{
		store:        store,
		catalog:      catalog,
		generator:    generator,
		notifier:     notifier,
		logger:       logger,
		loc:          loc,
		pollInterval: pollInterval,
		running:      make(map[int]*runningDisplay),
	}
}

func (s *DisplayService) GetDisplay(ctx context.Context, id int) (*models.Display, error) {
	return s.store.GetDisplay(ctx, id)
}

func (s *DisplayService) ListDisplays(ctx context.Context) ([]*models.Display, error) {
	return s.store.ListDisplays(ctx)
}

func (s *DisplayService) StartDisplay(ctx context.Context, id int) error {
	display, err := s.store.GetDisplay(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get display: %w", err)
	}
	if !display.Enabled {
		return fmt.Errorf("display %d is disabled", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.running[id]; exists {
		return fmt.Errorf("display %d is already running", id)
	}

	controller := NewPlaybackController(id, s.catalog, s.generator, s.logger, s.loc, s.pollInterval)
	refresh := s.notifier.Subscribe(id)

	runCtx, cancel := context.WithCancel(context.Background())
	s.running[id] = &runningDisplay{controller: controller, cancel: cancel}

	go func() {
		controller.Run(runCtx, refresh)
		s.logger.WithField("display_id", id).Info("Playback loop stopped")
	}()

	s.logger.WithField("display_id", id).Info("Playback loop started")
	return nil
}

func (s *DisplayService) StopDisplay(id int) error {
	s.mu.Lock()
	run, exists := s.running[id]
	if exists {
		delete(s.running, id)
	}
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("display %d is not running", id)
	}

	s.notifier.Unsubscribe(id)
	run.cancel()
	return nil
}

// DisplayStatus returns the live playback snapshot, or an idle snapshot when
// the display exists but has no running loop.
func (s *DisplayService) DisplayStatus(ctx context.Context, id int) (*PlaybackSnapshot, error) {
	if _, err := s.store.GetDisplay(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get display: %w", err)
	}

	s.mu.Lock()
	run, exists := s.running[id]
	s.mu.Unlock()

	if !exists {
		return &PlaybackSnapshot{DisplayID: id, State: StateIdle}, nil
	}
	snapshot := run.controller.Status()
	return &snapshot, nil
}

// StopAll shuts every running loop down, used on application shutdown.
func (s *DisplayService) StopAll() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.running))
	for id := range s.running {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.StopDisplay(id); err != nil {
			s.logger.WithError(err).WithField("display_id", id).Warn("Failed to stop display")
		}
	}
}
