package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/chainsim/beergame/internal/api"
	"github.com/chainsim/beergame/internal/config"
	"github.com/chainsim/beergame/internal/game"
	"github.com/chainsim/beergame/internal/store"
	"github.com/chainsim/beergame/internal/ws"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`beergame - four-tier supply chain ordering game

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT            Port to listen on (default: 8080)
  FACTORS_FILE    Path to a YAML file overriding the simulation constants

Visit http://localhost:8080/health after starting the server.
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("beergame %s\n", version)
		return
	}

	cfg := config.FromEnv()
	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	factors := game.DefaultFactors()
	if cfg.FactorsFile != "" {
		f, err := game.LoadFactors(cfg.FactorsFile)
		if err != nil {
			zerologlog.Fatal().Err(err).Str("file", cfg.FactorsFile).Msg("cannot load factors")
		}
		factors = f
		zerologlog.Info().Str("file", cfg.FactorsFile).Msg("factors loaded")
	}

	// Gin setup with a zerolog access log
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zerologlog.Info().
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	st := store.New()
	engine := game.NewEngine(factors, nil)
	hub := ws.NewHub()
	go hub.Run()

	api.NewServer(st, engine, hub).Register(r)
	r.GET("/ws", func(c *gin.Context) {
		ws.Serve(hub, c.Writer, c.Request)
	})

	zerologlog.Info().Str("port", port).Msg("listening")
	if err := r.Run(":" + port); err != nil {
		zerologlog.Fatal().Err(err).Msg("server stopped")
	}
}
