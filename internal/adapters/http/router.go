package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Office/internal/adapters/signal"
	"github.com/dkeye/Office/internal/config"
	"github.com/dkeye/Office/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const sessionNameKey = "display_name"

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, hub *signal.Hub) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("OfficeSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": hub.Connections()})
	})

	api.GET("/layout", func(c *gin.Context) {
		c.JSON(http.StatusOK, hub.Layout)
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, hub.Registry.Rooms().Infos(hub.Registry.Snapshot()))
	})

	// The display name is remembered in the session cookie so a reload
	// reconnects under the same name.
	api.GET("/profile", func(c *gin.Context) {
		name, _ := sessions.Default(c).Get(sessionNameKey).(string)
		c.JSON(http.StatusOK, gin.H{"display_name": name})
	})

	api.POST("/profile", func(c *gin.Context) {
		var body struct {
			DisplayName string `json:"display_name"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
			return
		}
		if err := domain.ValidateDisplayName(body.DisplayName); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_name"})
			return
		}
		s := sessions.Default(c)
		s.Set(sessionNameKey, body.DisplayName)
		if err := s.Save(); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"display_name": body.DisplayName})
	})

	api.GET("/ws/signal", func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			name, _ = sessions.Default(c).Get(sessionNameKey).(string)
		}
		log.Info().Str("module", "adapters.http").Str("client_token", c.GetString("client_token")).Msg("ws signal endpoint hit")
		hub.HandleSignal(ctx, c, name)
	})

	return r
}
