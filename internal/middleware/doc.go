// Package middleware provides HTTP middleware for the EDF viewer server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Request ID propagation (X-Request-ID)
//   - Prometheus request metrics per route template
//   - CORS and response compression built on gorilla/handlers
package middleware
