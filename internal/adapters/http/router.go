package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/adapters/ws"
	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/collab"
	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/config"
	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/execute"
)

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, reg *collab.Registry, svc *execute.Service) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("CollabSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ctl := ws.NewController(reg, cfg)
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(ctx, c)
	})

	api := r.Group("/api")
	api.POST("/execute", ExecuteHandler(svc))
	api.GET("/rooms", RoomsHandler(reg))

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
