// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/compose/internal/config"
	"github.com/quixsi/compose/internal/db"
	"github.com/quixsi/compose/internal/server/api"
	"github.com/quixsi/compose/internal/server/templates"
)

//go:embed all:static
var staticFS embed.FS

func NewServer(
	serviceName string,
	staticDir string,
	cfg *config.Config,
	sStore db.StateStore,
	tStore db.ThemeStore,
) *Server {
	return &Server{
		logger:      slog.Default().WithGroup("http"),
		serviceName: serviceName,
		staticDir:   staticDir,
		cfg:         cfg,
		sStore:      sStore,
		tStore:      tStore,
	}
}

type Server struct {
	serviceName string
	staticDir   string
	logger      *slog.Logger
	cfg         *config.Config
	sStore      db.StateStore
	tStore      db.ThemeStore
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := gin.New()
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	middlewares := []gin.HandlerFunc{
		sloggin.NewWithConfig(s.logger,
			sloggin.Config{
				DefaultLevel:     slog.LevelInfo,
				ClientErrorLevel: slog.LevelWarn,
				ServerErrorLevel: slog.LevelError,
			},
		),
		gin.Recovery(), otelgin.Middleware(s.serviceName), slogAddTraceAttributes,
	}

	adminArea := mux.Group("/admin")
	adminArea.Use(append(middlewares, gin.BasicAuth(gin.Accounts{
		s.cfg.AdminUser: s.cfg.AdminPassword,
	}))...)

	var staticDir fs.FS
	var err error
	switch {
	case s.staticDir != "":
		staticDir = os.DirFS(s.staticDir)
	default:
		staticDir, err = fs.Sub(staticFS, "static")
		if err != nil {
			panic(err)
		}
	}

	mux.StaticFS("/static", http.FS(fs.FS(staticDir)))

	mux.Use(middlewares...)

	inviteHandler := templates.NewInviteHandler(s.sStore, s.tStore)
	mux.GET("/", redirectCreate)
	mux.GET("/create", inviteHandler.RenderCreate)
	mux.POST("/create/form", inviteHandler.UpdateForm)
	mux.POST("/create/reset", inviteHandler.ResetForm)
	mux.POST("/create/save", inviteHandler.SaveInvite)
	mux.GET("/view", inviteHandler.RenderView)
	mux.GET("/invites/:id", inviteExists(s.sStore), inviteHandler.RenderInvite)

	inviteAPI := api.NewInviteAPI(s.sStore)
	mux.POST("/api/create-invite", inviteAPI.CreateInvite)
	mux.GET("/api/render/:frame", inviteAPI.RenderFrame)

	adminArea.GET("/", inviteHandler.RenderAdminOverview)

	mux.NoRoute(notFound)

	mux.ServeHTTP(w, r)
}

func inviteExists(db db.StateStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := db.GetInviteByID(c.Request.Context(), c.Param("id")); err != nil {
			notFound(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectCreate(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, "/create")
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Page not found"})
}

func slogAddTraceAttributes(c *gin.Context) {
	sloggin.AddCustomAttributes(c,
		slog.String("trace-id", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
	)
	sloggin.AddCustomAttributes(c,
		slog.String("span-id", trace.SpanFromContext(c.Request.Context()).SpanContext().SpanID().String()),
	)
	c.Next()
}
