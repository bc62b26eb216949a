package main

import (
	"flag"
	"os"

	"github.com/gin-gonic/gin"

	"precio-luz/internal/api/handlers"
	"precio-luz/internal/api/middleware"
	"precio-luz/internal/config"
	"precio-luz/internal/fetch"
	"precio-luz/internal/logger"
	"precio-luz/internal/prices"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Setup(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})

	client := fetch.NewClient(fetch.Config{
		Timeout:       cfg.Fetch.Timeout,
		MaxRetries:    cfg.Fetch.MaxRetries,
		BaseDelay:     cfg.Fetch.BaseDelay,
		MaxDelay:      cfg.Fetch.MaxDelay,
		RatePerSecond: cfg.Fetch.RatePerSecond,
		Burst:         cfg.Fetch.Burst,
	}, log)
	svc := prices.NewService(cfg.Upstream.BaseURL, client, log)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.ErrorHandler())

	pricesHandler := handlers.NewPricesHandler(svc)
	slugHandler := handlers.NewSlugHandler()
	availabilityHandler := handlers.NewAvailabilityHandler(svc)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/prices", pricesHandler.GetPrices)
		api.GET("/prices/today", pricesHandler.GetToday)
		api.GET("/prices/tomorrow", pricesHandler.GetTomorrow)

		api.GET("/tomorrow-availability", availabilityHandler.TomorrowAvailability)

		api.GET("/slug", slugHandler.Encode)
		api.GET("/slug/:slug", slugHandler.Resolve)
	}

	log.WithField("listen", cfg.Server.Listen).Info("starting API server")
	if err := router.Run(cfg.Server.Listen); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
