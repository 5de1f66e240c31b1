package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/duarte/tender-finder/internal/db"
	"github.com/duarte/tender-finder/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Store is the data-access surface the handlers depend on. It is injected so
// tests can substitute an in-memory implementation.
type Store interface {
	ListAnnouncements(ctx context.Context, params db.ListParams) (*db.ListResult, error)
	GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error)
	AnnouncementExists(ctx context.Context, id int64) (bool, error)
	GetAdjudicationFactors(ctx context.Context, id int64) ([]models.AdjudicationFactor, error)
	GetDistricts(ctx context.Context, cpv string) ([]string, error)
	GetContractTypes(ctx context.Context, cpv string) ([]string, error)
	GetCPVCodes(ctx context.Context, announcementIDs []int64) ([]string, error)
	GetArchiveStatus(ctx context.Context, id int64) (isArchived, exists bool, err error)
	SetArchived(ctx context.Context, id int64, archived bool) error
	GetNote(ctx context.Context, id int64) (*models.Note, error)
	UpsertNote(ctx context.Context, id int64, text string) (*models.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	UpdateExpired(ctx context.Context) (*db.ExpiredCounts, error)
	SeedSampleData(ctx context.Context) (int, error)
}

type Server struct {
	Store Store
	Echo  *echo.Echo
	log   zerolog.Logger

	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(store Store, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost.
	allowedOrigins := []string{"http://localhost:3000"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Admin-Secret"},
	}))

	s := &Server{
		Store: store,
		Echo:  e,
		log:   log,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.GET("/announcements", s.handleListAnnouncements)
	api.GET("/announcements/:id", s.handleGetAnnouncement)
	api.GET("/announcements/:id/archive", s.handleGetArchiveStatus)
	api.POST("/announcements/:id/archive", s.handleSetArchiveStatus)
	api.GET("/announcements/:id/notes", s.handleGetNote)
	api.POST("/announcements/:id/notes", s.handleSaveNote)
	api.DELETE("/announcements/:id/notes", s.handleDeleteNote)
	api.GET("/announcements/:id/adjudication-factors", s.handleGetAdjudicationFactors)
	api.GET("/districts", s.handleGetDistricts)
	api.GET("/contract-types", s.handleGetContractTypes)
	api.GET("/cpvs", s.handleGetCPVCodes)

	admin := api.Group("/admin")
	admin.Use(s.adminMiddleware)
	admin.POST("/update-expired", s.handleUpdateExpired)
	admin.GET("/jobs/:id", s.handleJobStatus)
	admin.POST("/seed", s.handleSeed)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Accept either the X-Admin-Secret header or a Bearer token.
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
