package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// MountMedia serves uploaded product images and thumbnails.
func MountMedia(r *chi.Mux, dir string) {
	fs := http.StripPrefix("/media/", http.FileServer(http.Dir(dir)))
	r.Get("/media/*", fs.ServeHTTP)
}
