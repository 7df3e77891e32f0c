package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/marinara16/student-email-generator/internal/api"
	"github.com/marinara16/student-email-generator/internal/config"
	"github.com/marinara16/student-email-generator/internal/session"
	"github.com/marinara16/student-email-generator/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Resolve the config next to the executable
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "gradebook.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	sessionMgr := session.NewManager()

	// Background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Processing.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(time.Duration(cfg.Processing.SessionTimeoutMinutes) * time.Minute)
		}
	}()

	h := api.NewHandler(fileStore, sessionMgr, cfg.Security.AllowedFileTypes)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Server.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/status") ||
				strings.HasSuffix(path, "/progress") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.Contains(path, "/upload") ||
				strings.Contains(path, "/progress") ||
				c.Request().Header.Get("Accept") == "text/event-stream"
		},
		ErrorMessage: "Request timeout",
	}))

	if cfg.Processing.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Processing.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				return c.Request().Header.Get("Accept") == "text/event-stream"
			},
		}))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API Routes
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", h.HandleHealth)

	// File management
	apiGroup.POST("/files/upload", h.HandleUploadFile)
	apiGroup.POST("/files/paste", h.HandlePasteText)
	apiGroup.GET("/files/recent", h.HandleRecentFiles)
	apiGroup.GET("/files/:id", h.HandleGetFile)
	apiGroup.PUT("/files/:id", h.HandleRenameFile)

	if cfg.Security.AllowFileDeletion {
		apiGroup.DELETE("/files/:id", h.HandleDeleteFile)
	}

	// Import sessions
	apiGroup.POST("/imports", h.HandleStartImport)
	apiGroup.GET("/imports/:sessionId/status", h.HandleImportStatus)
	apiGroup.GET("/imports/:sessionId/progress", h.HandleImportProgressStream)
	apiGroup.GET("/imports/:sessionId/table", h.HandleGetTable)
	apiGroup.GET("/imports/:sessionId/assignments", h.HandleGetAssignments)
	apiGroup.PUT("/imports/:sessionId/assignments", h.HandleUpdateAssignments)
	apiGroup.GET("/imports/:sessionId/summaries", h.HandleGetSummaries)
	apiGroup.GET("/imports/:sessionId/summaries/:student", h.HandleGetSummary)
	apiGroup.GET("/imports/:sessionId/export/csv", h.HandleExportCSV)
	apiGroup.GET("/imports/:sessionId/export/xlsx", h.HandleExportXLSX)
	apiGroup.GET("/imports/:sessionId/export/msgpack", h.HandleExportMsgpack)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("Gradebook Import Server %s (built %s)\n", Version, BuildTime)
	fmt.Printf("Config:   %s\n", configPath)
	fmt.Printf("Data Dir: %s\n", cfg.GetDataDir())
	fmt.Printf("Listen:   http://%s\n", cfg.GetServerAddr())

	e.Logger.Fatal(e.StartServer(s))
}
