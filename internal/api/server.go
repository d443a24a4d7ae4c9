package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/database"
	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type Server struct {
	router         *gin.Engine
	generator      *services.PlaylistGenerator
	displayService *services.DisplayService
	notifier       *services.PlaylistNotifier
	loc            *time.Location
}

func NewServer(
	generator *services.PlaylistGenerator,
	displayService *services.DisplayService,
	notifier *services.PlaylistNotifier,
	loc *time.Location,
) *Server {
	router := gin.Default()
	s := &Server{
		router:         router,
		generator:      generator,
		displayService: displayService,
		notifier:       notifier,
		loc:            loc,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		api.GET("/playlist", s.getPlaylist)
		api.POST("/playlist/regenerate", s.regeneratePlaylist)
		api.GET("/displays", s.listDisplays)
		api.GET("/displays/:id", s.getDisplay)
		api.POST("/displays/:id/start", s.startDisplay)
		api.POST("/displays/:id/stop", s.stopDisplay)
		api.GET("/displays/:id/status", s.displayStatus)
	}
}

// getPlaylist is the kiosk's on-demand fetch: sweep, filter, sort, project.
func (s *Server) getPlaylist(c *gin.Context) {
	playlist, err := s.generator.Generate(c.Request.Context(), time.Now(), s.loc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// regeneratePlaylist is the scheduled trigger's HTTP twin: it regenerates
// and pushes the result to every subscribed display.
func (s *Server) regeneratePlaylist(c *gin.Context) {
	playlist, err := s.generator.Generate(c.Request.Context(), time.Now(), s.loc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.notifier.Publish(playlist)
	c.JSON(http.StatusOK, gin.H{
		"message":    "playlist regenerated",
		"item_count": len(playlist.Items),
	})
}

func (s *Server) listDisplays(c *gin.Context) {
	displays, err := s.displayService.ListDisplays(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if displays == nil {
		displays = []*models.Display{}
	}
	c.JSON(http.StatusOK, gin.H{"displays": displays})
}

func (s *Server) getDisplay(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid display ID"})
		return
	}

	display, err := s.displayService.GetDisplay(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "display not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, display)
}

func (s *Server) startDisplay(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid display ID"})
		return
	}

	if err := s.displayService.StartDisplay(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "display not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "display started"})
}

func (s *Server) stopDisplay(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid display ID"})
		return
	}

	if err := s.displayService.StopDisplay(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "display stopped"})
}

func (s *Server) displayStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid display ID"})
		return
	}

	status, err := s.displayService.DisplayStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "display not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
