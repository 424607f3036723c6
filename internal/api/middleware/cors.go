package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSOptions настройки CORS для публичных страниц бронирования
type CORSOptions struct {
	AllowedOrigins []string
	MaxAgeSeconds  int
}

// CORS оборачивает обработчик в rs/cors
func CORS(opts CORSOptions, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", HeaderUserID},
		MaxAge:         opts.MaxAgeSeconds,
	}).Handler(next)
}
