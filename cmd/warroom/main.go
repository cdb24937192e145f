package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"go-warroom/internal/auth"
	"go-warroom/internal/defense"
	"go-warroom/internal/prefs"
	"go-warroom/internal/proxy"
	"go-warroom/internal/roles"
	"go-warroom/internal/roster"
	"go-warroom/pkg/app"
	"go-warroom/pkg/config"
	"go-warroom/pkg/gamebackend"
	"go-warroom/pkg/module"
	"go-warroom/pkg/version"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	warroomMiddleware "go-warroom/pkg/middleware"
	_ "go.uber.org/automaxprocs"
)

// customLoggerMiddleware logs requests but excludes health check endpoints
func customLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/health") {
			next.ServeHTTP(w, r)
			return
		}
		middleware.Logger(next).ServeHTTP(w, r)
	})
}

// corsMiddleware allows credentialed requests from the frontend origin
func corsMiddleware(next http.Handler) http.Handler {
	frontendOrigin := ""
	if parsed, err := url.Parse(config.GetFrontendURL()); err == nil {
		frontendOrigin = parsed.Scheme + "://" + parsed.Host
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && origin == frontendOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	versionInfo := version.Get()
	log.Printf("Warroom %s | build %s", version.GetVersionString(), versionInfo.BuildDate)
	log.Printf("CPUs: %d | GOMAXPROCS: %d", runtime.NumCPU(), runtime.GOMAXPROCS(0))

	ctx := context.Background()

	appCtx, err := app.InitializeApp("warroom")
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer appCtx.Shutdown(ctx)

	r := chi.NewRouter()

	r.Use(customLoggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)
	r.Use(warroomMiddleware.TracingMiddleware)

	r.Get("/health", healthHandler)

	// Shared typed client for the game backend.
	backendClient := gamebackend.NewClient()

	// Modules. The auth module doubles as the JWT validator and the
	// upstream token source for everything downstream.
	authModule := auth.New(appCtx.MongoDB, appCtx.Redis, backendClient)
	authService := authModule.GetAuthService()

	proxyModule := proxy.New(appCtx.MongoDB, appCtx.Redis, authService, authService)
	rolesModule := roles.New(appCtx.MongoDB, appCtx.Redis, backendClient, authService, authService)
	defenseModule := defense.New(appCtx.MongoDB, appCtx.Redis, backendClient, authService, authService)
	rosterModule := roster.New(appCtx.MongoDB, appCtx.Redis, backendClient, authService, authService)
	prefsModule := prefs.New(appCtx.MongoDB, appCtx.Redis, authService)

	modules := []module.Module{authModule, proxyModule, rolesModule, defenseModule, rosterModule, prefsModule}

	apiPrefix := config.GetAPIPrefix()

	humaConfig := huma.DefaultConfig("Warroom API Server", "1.0.0")
	humaConfig.Info.Description = "Alliance war-room companion backend"
	frontendURL := config.GetFrontendURL()
	humaConfig.Servers = []*huma.Server{
		{URL: frontendURL + apiPrefix, Description: "Production server"},
		{URL: "http://localhost:8080" + apiPrefix, Description: "Local development"},
	}

	var unifiedAPI huma.API
	if apiPrefix == "" {
		unifiedAPI = humachi.New(r, humaConfig)
	} else {
		r.Route(apiPrefix, func(prefixRouter chi.Router) {
			unifiedAPI = humachi.New(prefixRouter, humaConfig)
		})
	}

	authModule.RegisterUnifiedRoutes(unifiedAPI, "/auth")
	rolesModule.RegisterUnifiedRoutes(unifiedAPI, "/roles")
	defenseModule.RegisterUnifiedRoutes(unifiedAPI, "/defense")
	rosterModule.RegisterUnifiedRoutes(unifiedAPI, "/roster")
	prefsModule.RegisterUnifiedRoutes(unifiedAPI, "/prefs")

	// The proxy stays off the typed API: bodies stream through verbatim.
	r.Route(apiPrefix+"/back", func(backRouter chi.Router) {
		proxyModule.Routes(backRouter)
	})

	for _, mod := range modules {
		go mod.StartBackgroundTasks(ctx)
	}

	port := app.GetPort("8080")
	host := config.GetHost()

	srv := &http.Server{
		Addr:         host + ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting warroom server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Received shutdown signal, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	for _, mod := range modules {
		mod.Stop()
	}

	appCtx.Shutdown(shutdownCtx)

	slog.Info("Warroom shutdown completed")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	// Health checks are excluded from logging to reduce noise.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	versionInfo := version.Get()
	response := fmt.Sprintf(`{
		"status": "healthy",
		"service": "warroom",
		"version": "%s",
		"git_commit": "%s",
		"build_date": "%s",
		"go_version": "%s",
		"platform": "%s"
	}`, versionInfo.Version, versionInfo.GitCommit, versionInfo.BuildDate, versionInfo.GoVersion, versionInfo.Platform)

	w.Write([]byte(response))
}
