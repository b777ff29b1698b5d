package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/dispensa/internal/expiry"
	"github.com/erazemk/dispensa/internal/notifier"
)

// ProductChecker runs the on-save expiry check for a product that was just
// written.
type ProductChecker interface {
	CheckProduct(ctx context.Context, name, rawExpiry string, quantity int, imageURL string) expiry.Tier
}

// SweepRunner runs an expiry sweep on demand.
type SweepRunner interface {
	RunNow(ctx context.Context) (notifier.SweepResult, error)
}

// Deps are the collaborators the API needs.
type Deps struct {
	DB           *sql.DB
	TokenSecret  string
	PasswordHash []byte
	Checker      ProductChecker
	Sweeper      SweepRunner

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, TokenSecret: d.TokenSecret, PasswordHash: d.PasswordHash}
	productsHandler := &ProductsHandler{DB: d.DB, Checker: d.Checker, Now: d.Now}
	sweepHandler := &SweepHandler{Sweeper: d.Sweeper}

	authMW := AuthMiddleware(d.TokenSecret, d.DB)

	// Public.
	mux.HandleFunc("GET /healthz", healthz)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	mux.Handle("GET /api/products", authMW(http.HandlerFunc(productsHandler.List)))
	mux.Handle("POST /api/products", authMW(http.HandlerFunc(productsHandler.Create)))
	mux.Handle("GET /api/products/{id}", authMW(http.HandlerFunc(productsHandler.Get)))
	mux.Handle("PUT /api/products/{id}", authMW(http.HandlerFunc(productsHandler.Update)))
	mux.Handle("DELETE /api/products/{id}", authMW(http.HandlerFunc(productsHandler.Delete)))
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(productsHandler.Stats)))

	mux.Handle("POST /api/sweep", authMW(http.HandlerFunc(sweepHandler.Run)))

	return mux
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
