package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter регистрирует маршруты API, Swagger UI и middleware.
func NewRouter(h *Handlers, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", h.Index).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/weather", h.Weather).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/upload", h.Upload).Methods(http.MethodPost, http.MethodOptions)

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	router.Use(requestIDMiddleware, loggingMiddleware, recoverMiddleware, corsMiddleware(allowedOrigins))
	return router
}
