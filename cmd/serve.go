package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crumble-bakery/signup-service/app/controller"
	"github.com/crumble-bakery/signup-service/app/middleware"
	"github.com/crumble-bakery/signup-service/app/repository"
	"github.com/crumble-bakery/signup-service/app/service"
	"github.com/crumble-bakery/signup-service/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the signup HTTP server",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	kv, err := repository.NewKV(cfg.Storage)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage backend")
	}
	defer kv.Close()

	store := repository.NewSubmissionStore(kv, cfg.Storage.KeyPrefix, cfg.Signup.RateLimitWindow, cfg.Signup.RateLimitMaxAttempts)
	subscriptionService := service.NewSubscriptionService(store, cfg.Signup)
	adminTokenService := service.NewAdminTokenService(cfg.Admin)

	startHTTPServer(cfg, store, subscriptionService, adminTokenService)
}

func startHTTPServer(
	cfg *config.Config,
	store *repository.SubmissionStore,
	subscriptionService service.SubscriptionService,
	adminTokenService *service.AdminTokenService,
) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if cfg.Throttle.Enabled {
		e.Use(middleware.NewThrottleMiddleware(cfg.Throttle).Throttle)
	}

	signupController := controller.NewSignupController(subscriptionService)
	adminController := controller.NewAdminController(store)
	authMiddleware := middleware.NewAuthMiddleware(adminTokenService)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	signup := e.Group("/signup")
	signup.POST("/subscribe", signupController.Subscribe)
	signup.POST("/validate", signupController.Validate)

	admin := e.Group("/admin")
	admin.Use(authMiddleware.RequireAdmin)
	admin.GET("/submissions", adminController.ListSubmissions)
	admin.GET("/stats", adminController.Stats)

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	go func() {
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Failed to shut down HTTP server cleanly")
	}
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return nil
}
