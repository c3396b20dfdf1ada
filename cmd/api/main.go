package main

import (
	"context"
	"log"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/gateway"
	"backoffice/internal/handler"
	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/internal/snapshot"
	"backoffice/internal/store"
	"backoffice/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	cache, err := snapshot.Open(cfg.SnapshotPath)
	if err != nil {
		log.Fatalf("Snapshot open failed: %v", err)
	}
	log.Printf("Snapshot cache ready at %s", cfg.SnapshotPath)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	gw := gateway.NewClient(gateway.Config{
		BaseURL:     cfg.SheetsAPIURL,
		Timeout:     cfg.RequestTimeout,
		LongTimeout: cfg.LongTimeout,
		Retries:     cfg.Retries,
		Backoff:     cfg.RetryBackoff,
	})

	st := store.New(gw, cache, &websocket.Notifier{Hub: wsHub})
	warmStore(st, cache)

	// Set up dependencies (Store -> Service -> Handler)
	userService := service.NewUserService(st, gw, cache, middleware.GetJWTSecret())
	entryService := service.NewEntryService(st)
	expenseService := service.NewExpenseService(st)
	stockService := service.NewStockService(st)
	branchService := service.NewBranchService(st)
	settingsService := service.NewSettingsService(st)
	attendanceService := service.NewAttendanceService(gw, gateway.NewIPLookup(cfg.IPLookupEndpoint), cache)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	entryHandler := handler.NewEntryHandler(entryService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	stockHandler := handler.NewStockHandler(stockService)
	branchHandler := handler.NewBranchHandler(branchService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	syncHandler := handler.NewSyncHandler(st)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	entryHandler.RegisterRoutes(router.Group(""))
	expenseHandler.RegisterRoutes(router.Group(""))
	stockHandler.RegisterRoutes(router.Group(""))
	branchHandler.RegisterRoutes(router.Group(""))
	settingsHandler.RegisterRoutes(router.Group(""))
	attendanceHandler.RegisterRoutes(router.Group(""))
	syncHandler.RegisterRoutes(router.Group(""))

	go backgroundSync(st, cfg.SyncInterval)

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// warmStore seeds in-memory state from the last committed snapshot so the API
// serves data immediately, before the first remote sync completes.
func warmStore(st *store.Store, cache *snapshot.Cache) {
	entries, err := cache.LoadEntries()
	if err != nil {
		log.Printf("warm entries: %v", err)
	}
	expenses, err := cache.LoadExpenses()
	if err != nil {
		log.Printf("warm expenses: %v", err)
	}
	stock, err := cache.LoadStock()
	if err != nil {
		log.Printf("warm stock: %v", err)
	}
	branches, err := cache.LoadBranches()
	if err != nil {
		log.Printf("warm branches: %v", err)
	}
	users, err := cache.LoadUsers()
	if err != nil {
		log.Printf("warm users: %v", err)
	}
	settings, err := cache.LoadSettings()
	if err != nil {
		settings = model.DefaultSettings()
	}
	st.Warm(entries, expenses, stock, branches, users, settings)
}

// backgroundSync refreshes every collection on a fixed interval. The first
// sync runs immediately so a cold start converges without waiting a tick.
func backgroundSync(st *store.Store, interval time.Duration) {
	sync := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := st.SyncAll(ctx, true); err != nil {
			log.Printf("background sync: %v", err)
		}
	}

	sync()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		sync()
	}
}
