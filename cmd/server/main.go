package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/controller"
	"github.com/benbeisheim/chess-backend/internal/logger"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
)

func main() {
	var (
		configPath string
		addr       string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve chess games over HTTP and WebSocket",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level, overrides log.level")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	log := logger.New(cfg.Log)

	// Initialize storage
	var store service.Store
	if cfg.Storage.Enabled() {
		st, err := storage.Open(cfg.Storage, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close storage")
			}
		}()
		store = st
	}

	// Initialize services
	gameManager := service.NewGameManager(cfg.Matchmaking.Interval(), store, log)
	if _, err := gameManager.Restore(); err != nil {
		log.Error().Err(err).Msg("failed to restore games")
	}
	gameService := service.NewGameService(gameManager)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go gameManager.Run(ctx)

	app := newApp(cfg, gameService, log)
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
	return app.Listen(cfg.Server.Addr)
}

func newApp(cfg config.Config, gameService *service.GameService, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(log))

	// Initialize controllers
	gameController := controller.NewGameController(gameService, log)
	wsController := controller.NewWebSocketController(gameService, log)

	controller.RegisterRoutes(app, gameController, wsController, websocket.Config{
		ReadBufferSize:  cfg.Server.ReadBufferSize,
		WriteBufferSize: cfg.Server.WriteBufferSize,
		Origins:         splitOrigins(cfg.Server.AllowOrigins),
	})
	return app
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
