package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/insightdelivered/ledgerparse/internal/api"
	"github.com/insightdelivered/ledgerparse/internal/config"
	"github.com/insightdelivered/ledgerparse/internal/parser"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("ledgerparse v%s\n", api.Version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log)

	engine := parser.New(parser.Config{
		HeaderRegionTokens: cfg.Engine.HeaderRegionTokens,
		BalanceProximity:   cfg.Engine.BalanceProximity,
		LineTolerance:      cfg.Engine.LineTolerance,
		BoxLineTolerance:   cfg.Engine.BoxLineTolerance,
		DescriptionLimit:   cfg.Engine.DescriptionLimit,
	})

	app := fiber.New(fiber.Config{
		AppName:   "ledgerparse",
		BodyLimit: cfg.Server.MaxUploadMB << 20,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	api.NewServer(engine, log).Register(app)

	go func() {
		log.Info("listening", "addr", cfg.Server.Addr)
		if err := app.Listen(cfg.Server.Addr); err != nil {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Error("shutdown error", "err", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
