package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"ideagauge/internal/service"
	"ideagauge/internal/transport/rest/handler"
	"ideagauge/internal/transport/rest/middleware"
	"ideagauge/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService         *service.AuthService
	ConversationService *service.ConversationService
	ReportService       *service.ReportService
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(c.AuthService)
	convHandler := handler.NewConversationHandler(c.ConversationService)
	reportHandler := handler.NewReportHandler(c.ConversationService, c.ReportService)
	wsHandler := ws.NewHandler(c.ConversationService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Session-scoped routes
	sessionRoutes := v1.NewRoute().Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("/conversations", convHandler.Create).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/conversations", convHandler.List).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/conversations/{id}", convHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/conversations/{id}/messages", convHandler.PostMessage).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/conversations/{id}/messages", convHandler.GetMessages).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/conversations/{id}/progress", convHandler.GetProgress).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/conversations/{id}/report", reportHandler.Generate).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/conversations/{id}/report", reportHandler.Get).Methods("GET", "OPTIONS")

	// WebSocket streaming (token in query param)
	sessionRoutes.HandleFunc("/ws/conversations/{id}", wsHandler.Stream).Methods("GET")

	return r
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
