package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
)

// CORSConfig holds the cross-origin settings for the API.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowCredentials bool
}

func (c CORSConfig) options(headers []string) []handlers.CORSOption {
	opts := []handlers.CORSOption{
		handlers.AllowedOrigins(c.AllowedOrigins),
		handlers.AllowedMethods(c.AllowedMethods),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
		handlers.OptionStatusCode(http.StatusNoContent),
	}
	if len(headers) > 0 {
		opts = append(opts, handlers.AllowedHeaders(headers))
	}
	if c.AllowCredentials {
		opts = append(opts, handlers.AllowCredentials())
	}
	return opts
}

// CORS returns middleware answering cross-origin requests for the
// configured origins and methods. Any request header is allowed: a
// preflight is answered with exactly the headers it asks for.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		simple := handlers.CORS(config.options(nil)...)(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
					handlers.CORS(config.options(strings.Split(requested, ","))...)(next).ServeHTTP(w, r)
					return
				}
			}
			simple.ServeHTTP(w, r)
		})
	}
}

// Compression returns gzip/deflate response compression middleware.
func Compression() func(http.Handler) http.Handler {
	return handlers.CompressHandler
}
