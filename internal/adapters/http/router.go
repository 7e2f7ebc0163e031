package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Mahjong/internal/adapters/signal"
	"github.com/dkeye/Mahjong/internal/app/orch"
	"github.com/dkeye/Mahjong/internal/config"
	"github.com/dkeye/Mahjong/internal/core"
	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

const (
	sessionName     = "MahjongSessions"
	clientTokenKey  = "ct"
	clientTokenLife = 3600 * 24 * 7
)

// ClientTokenMiddleware keeps a per-browser token in the signed session
// cookie and exposes it as "client_token". Needs the sessions middleware.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			sess.Set(clientTokenKey, token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save client token")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: clientTokenLife, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Strs("origins", cfg.AllowedOrigins).Msg("router setup")

	ctrl := signal.NewSignalWSController(o,
		signal.NewIntentLimiter(cfg.RateLimit, cfg.RateInterval),
		signal.Options{
			ReadLimit:      cfg.ReadLimit,
			PingPeriod:     cfg.PingPeriod,
			SendBuffer:     cfg.SendBuffer,
			AllowedOrigins: cfg.AllowedOrigins,
		},
	)

	api := r.Group("/api")

	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": o.Rooms.Count()})
	})
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Rooms.List()})
	})
	api.GET("/rooms/:id", func(c *gin.Context) {
		room, ok := o.Rooms.GetRoom(domain.RoomID(c.Param("id")))
		if !ok {
			c.JSON(http.StatusNotFound, orch.ErrorMessage(core.ErrRoomNotFound))
			return
		}
		c.JSON(http.StatusOK, room.Snapshot())
	})
	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
