package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github/itish2003/physolve/config"
	"github/itish2003/physolve/controller"
	"github/itish2003/physolve/diagram"
	"github/itish2003/physolve/logging"
	"github/itish2003/physolve/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "physolve",
		Short:         "Physics problem solver with generated diagrams",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var configPath string
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "YAML config file")

	serveCmd := newServeCmd(&configPath)
	rootCmd.AddCommand(serveCmd, newRenderCmd(&configPath))
	// running with no subcommand serves
	rootCmd.RunE = serveCmd.RunE

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads .env and config and builds the logger shared by all commands.
func setup(configPath string, requireAPIKey bool) (*config.Config, *logrus.Logger, error) {
	foundEnv, err := config.LoadDotEnv()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	if !foundEnv {
		logger.Info("No .env file found, relying on environment variables.")
	}
	if err := cfg.Validate(requireAPIKey); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath, true)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	log := logrus.NewEntry(logger)

	prompts, err := services.NewPromptStore(cfg.Prompt.Path, log)
	if err != nil {
		return err
	}
	if prompts.Path() != "" {
		go func() {
			if err := prompts.Watch(ctx); err != nil {
				logging.Component(logger, "prompt").WithError(err).Error("WATCHER: prompt hot reload disabled")
			}
		}()
	}

	generator, err := services.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logging.Component(logger, "gemini"))
	if err != nil {
		return fmt.Errorf("%w. Make sure GEMINI_API_KEY is set", err)
	}
	logger.WithField("model", cfg.Gemini.Model).Info("Successfully connected to Google Gemini.")

	pipeline, err := diagram.NewPipeline(log, diagram.RenderOptions{Width: cfg.Diagram.Width, Height: cfg.Diagram.Height})
	if err != nil {
		return err
	}
	solver := services.NewSolverService(generator, prompts, pipeline, log)
	solverController := controller.NewSolverController(solver, cfg.Upload.MaxBytes, log)

	router := setupRouter(cfg, logger)
	solverController.RegisterRoutes(router)

	port := strconv.Itoa(cfg.Server.Port)
	srv := &http.Server{Addr: ":" + port, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Go Gin backend server starting on http://localhost:%s", port)
		logger.Infof("Health check available at: http://localhost:%s/health", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupRouter(cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(controller.RequestID(), controller.RequestLogger(logging.Component(logger, "http")))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", controller.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", controller.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 || (len(cfg.CORS.AllowedOrigins) == 1 && cfg.CORS.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	router.Use(cors.New(corsCfg))

	router.MaxMultipartMemory = cfg.Upload.MaxBytes
	return router
}
