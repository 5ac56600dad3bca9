// Auction Relay API
// @title Auction Relay API
// @version 1.0
// @description Scrapes salvage-auction listings and vehicle pages from IAAI, IAAI Canada and Copart, and relays vehicles to WhatsApp or Telegram chats
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "auctionrelay/docs"
	"auctionrelay/internal/browser"
	"auctionrelay/internal/config"
	"auctionrelay/internal/database"
	"auctionrelay/internal/handlers"
	"auctionrelay/internal/imaging"
	"auctionrelay/internal/logging"
	"auctionrelay/internal/middleware"
	"auctionrelay/internal/relay"
	"auctionrelay/internal/scraper"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.SlogLevel())
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDatabase(cfg.SessionDBPath)
	if err != nil {
		slog.Error("Failed to open session store", "path", cfg.SessionDBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	n, err := db.ImportSessionsFromJSON(ctx, filepath.Join(filepath.Dir(cfg.SessionDBPath), "sessions.json"))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		slog.Warn("Session import failed", "error", err)
	case n > 0:
		slog.Info("Imported saved sessions", "count", n)
	}

	launcher := browser.NewRodLauncher(browser.Config{
		Headless:          cfg.Browser.Headless,
		Bin:               cfg.Browser.ChromeBin,
		UserAgent:         cfg.Browser.UserAgent,
		NavigationTimeout: cfg.Scrape.NavTimeout(),
	})
	delays := scraper.DefaultDelays()
	delays.NavTimeout = cfg.Scrape.NavTimeout()
	delays.SelectorTimeout = cfg.Scrape.SelTimeout()
	sc := scraper.New(launcher, scraper.Options{
		CookiePath:       cfg.Scrape.CookiesPath,
		FollowPagination: cfg.Scrape.FollowPagination,
		MaxPages:         cfg.Scrape.MaxPages,
		Delays:           delays,
	})

	sessions := relay.NewRegistry(
		relay.NewSession(relay.BackendWhatsApp, relay.NewBridgeClient(relay.BackendWhatsApp, cfg.Relay.WhatsAppBridgeURL), db),
		relay.NewSession(relay.BackendTelegram, relay.NewBridgeClient(relay.BackendTelegram, cfg.Relay.TelegramBridgeURL), db),
	)
	if n := sessions.RestoreAll(ctx); n > 0 {
		slog.Info("✅ Restored messaging sessions", "count", n)
	}

	images := imaging.NewProcessor(cfg.Imaging.ImgBBAPIKey, cfg.Imaging.ImgBBUploadURL)
	var rehost relay.ImageProcessor
	if cfg.Imaging.ImgBBAPIKey != "" {
		rehost = images
	} else {
		slog.Warn("IMGBB_API_KEY not set, images will be relayed as scraped")
	}
	rl := relay.New(sc, sessions, rehost)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())

	// Configure trusted proxies for Cloudflare Tunnels
	if err := r.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
		"172.16.0.0/12",  // Docker networks
		"10.0.0.0/8",     // Private networks
		"192.168.0.0/16", // Private networks
	}); err != nil {
		slog.Warn("Failed to set trusted proxies", "error", err)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))
	r.Use(middleware.SecurityHeaders(cfg.IsRelease()))
	r.Use(middleware.HTTPMethodFilter(http.MethodGet, http.MethodPost, http.MethodOptions, http.MethodHead))

	limiter := middleware.NewRateLimiter(ctx, middleware.PerMinute(cfg.Security.RateLimitPerMinute), cfg.Security.RateBurst)

	health := handlers.NewHealthHandler(sessions)
	scrape := handlers.NewScrapeHandler(sc, cfg.Scrape.SearchURL, cfg.Scrape.DetailBaseURL)
	relayHandler := handlers.NewRelayHandler(rl)
	sessionHandler := handlers.NewSessionHandler(sessions)
	utilHandler := handlers.NewUtilHandler(images)

	r.GET("/", health.Index)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.GET("/health", health.Health)
	}

	scrapeGroup := r.Group("/scrape", middleware.RateLimitMiddleware(limiter))
	{
		scrapeGroup.GET("/iaai", scrape.ScrapeIAAI)
		scrapeGroup.GET("/listing", scrape.ScrapeListing)
		scrapeGroup.GET("/vehicle/:id", scrape.VehicleByID)
		scrapeGroup.GET("/vehicle", scrape.VehicleByURL)
	}

	send := r.Group("/scrape-and-send", middleware.RateLimitMiddleware(limiter))
	{
		send.POST("/via-whatsapp", relayHandler.ViaWhatsApp)
		send.POST("/via-telegram", relayHandler.ViaTelegram)
	}

	admin := r.Group("/sessions/:backend", middleware.AdminKeyMiddleware(cfg.Security.AdminKeyHash))
	{
		admin.POST("/init", sessionHandler.Init)
		admin.POST("/credential", sessionHandler.Credential)
		admin.POST("/challenge", sessionHandler.Challenge)
		admin.POST("/restore", sessionHandler.Restore)
		admin.POST("/logout", sessionHandler.Logout)
		admin.GET("/status", sessionHandler.Status)
	}
	if cfg.Security.AdminKeyHash == "" {
		slog.Warn("ADMIN_KEY_HASH not set, session routes are locked")
	}

	utilGroup := r.Group("/util", middleware.RateLimitMiddleware(limiter))
	{
		utilGroup.POST("/crop_img", utilHandler.CropImage)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Warn("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Server starting", "port", cfg.Port, "mode", gin.Mode())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
