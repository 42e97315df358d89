package main

import (
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/d-a-w-g/aux-wars/config"
	"github.com/d-a-w-g/aux-wars/game"
	"github.com/d-a-w-g/aux-wars/music"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	registry := game.NewRegistry(cfg.ReapGrace, cfg.PaceDelay, &tickerGen, log.Logger)
	reaperDone := make(chan struct{})
	defer close(reaperDone)
	go registry.Reaper(reaperDone)

	gateway := game.NewGateway(registry, log.Logger)
	gameHandler := game.NewHandler(gateway, log.Logger)

	r := CreateServer(cfg.AllowedOrigins)

	{
		gameGroup := r.Group("/game")
		gameGroup.GET("/ws", gameHandler.ConnectHandler)
	}

	if cfg.MusicEnabled() {
		musicHandler := music.NewHandler(music.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret), log.Logger)
		musicGroup := r.Group("/music")
		musicGroup.GET("/search", musicHandler.SearchHandler)
		musicGroup.PUT("/play", musicHandler.PlayHandler)
		musicGroup.PUT("/pause", musicHandler.PauseHandler)
	} else {
		log.Warn().Msg("music catalog credentials not set, /music routes disabled")
	}

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

var tickerGen = game.NewTickerGen()
