package server

import (
	"context"
	"net/http"
	"time"

	"KanbanService/response"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the id of a request between client, server and logs.
const RequestIDHeader = "X-Request-ID"

// RequestIDFrom returns the request id stored by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// RequestID reuses the caller's X-Request-ID or assigns a new uuid, echoes it in the
// response and stores it in the request context with chi's RequestID.
func RequestID(next http.Handler) http.Handler {
	withID := middleware.RequestID(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		res.Header().Set(RequestIDHeader, middleware.GetReqID(req.Context()))
		next.ServeHTTP(res, req)
	}))
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		if req.Header.Get(middleware.RequestIDHeader) == "" {
			req.Header.Set(middleware.RequestIDHeader, uuid.NewString())
		}
		withID.ServeHTTP(res, req)
	})
}

// rateLimiter is a middleware function that implements rate limiting for HTTP requests.
// If the request is not allowed due to rate limiting, it returns a JSON response with an
// error message and HTTP status code 429 (Too Many Requests).
func rateLimiter(limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		if !limiter.Allow() {
			response.Error(res, http.StatusTooManyRequests, "The API is at capacity, try again later.")
			return
		}
		next(res, req)
	}
}

// MetricsHandler is a middleware function that wraps the provided handler function
// with metrics collection and rate limiting capabilities.
func MetricsHandler(limiter *rate.Limiter, handlerFunc HandlerFuncWithMetrics, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) http.HandlerFunc {
	return rateLimiter(limiter, func(res http.ResponseWriter, req *http.Request) {
		handlerFunc(res, req, endPointCounter, errorCounter)
	})
}

// accessLog logs one line per request once it has been served.
func accessLog(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(res, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)
			log.WithFields(logrus.Fields{
				"method":      req.Method,
				"path":        req.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  RequestIDFrom(req.Context()),
			}).Info("request served")
		})
	}
}

// logPanics logs a panicking handler with the request it was serving and lets the
// panic continue to middleware.Recoverer, which answers 500.
func logPanics(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec != http.ErrAbortHandler {
						log.WithFields(logrus.Fields{
							"request":    req.Method + " " + req.URL.Path,
							"request_id": RequestIDFrom(req.Context()),
							"panic":      rec,
						}).Error("handler panicked")
					}
					panic(rec)
				}
			}()
			next.ServeHTTP(res, req)
		})
	}
}

// corsHandler allows browser clients on any origin.
func corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})
}
