package middlewares

import (
	"net/http"
	"os"
	"strings"
)

// CORSMiddleware builds its allow-list from CORS_ALLOWED_ORIGIN(S), plus the
// usual localhost dev origins, mirroring the teacher's struct-based CORS
// middleware rather than relying on mux's method-negotiation helper.
type CORSMiddleware struct {
	allowedOrigins map[string]bool
}

func NewCORSMiddleware() *CORSMiddleware {
	allowed := map[string]bool{
		"http://localhost:3000": true,
		"http://localhost:5173": true,
		"http://127.0.0.1:3000": true,
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowed[o] = true
			}
		}
	}
	if origin := os.Getenv("CORS_ALLOWED_ORIGIN"); origin != "" {
		allowed[origin] = true
	}

	return &CORSMiddleware{allowedOrigins: allowed}
}

func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (m.allowedOrigins[origin] || m.allowedOrigins["*"]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Api-Key, X-Request-Id")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
