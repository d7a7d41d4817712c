package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/kardemumma/kardemumma/internal/app"
	"github.com/kardemumma/kardemumma/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to init service: %v", err)
	}
	defer service.Close()

	authHandler := handlers.NewAuthHandler(service)
	featureHandler := handlers.NewFeatureHandler(service)
	questionHandler := handlers.NewQuestionHandler(service)
	adminHandler := handlers.NewAdminHandler(service)
	moduleHandler := handlers.NewModuleHandler(service)

	http.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	http.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	http.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	http.HandleFunc("GET /api/auth/me", authHandler.HandleMe)

	http.HandleFunc("GET /api/features", featureHandler.HandleList)
	http.HandleFunc("POST /api/features", featureHandler.HandleCreate)
	http.HandleFunc("GET /api/features/{id}", featureHandler.HandleGet)
	http.HandleFunc("PUT /api/features/{id}", featureHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/features/{id}", featureHandler.HandleDelete)
	http.HandleFunc("PUT /api/features/{id}/answers", featureHandler.HandleAnswers)

	http.HandleFunc("GET /api/questions", questionHandler.HandleList)
	http.HandleFunc("POST /api/questions", questionHandler.HandleCreate)
	http.HandleFunc("PUT /api/questions/{id}", questionHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/questions/{id}", questionHandler.HandleDelete)

	http.HandleFunc("GET /api/admins", adminHandler.HandleList)
	http.HandleFunc("POST /api/admins", adminHandler.HandleCreate)
	http.HandleFunc("PUT /api/admins/{id}", adminHandler.HandleUpdate)

	http.HandleFunc("GET /api/modules", moduleHandler.HandleList)
	http.HandleFunc("POST /api/modules", moduleHandler.HandleCreate)
	http.HandleFunc("PUT /api/modules/{id}", moduleHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/modules/{id}", moduleHandler.HandleDelete)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting kardemumma server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Kardemumma server failed: %v", err)
	}
}
