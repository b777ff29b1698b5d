package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/dispensa/internal/notifier"
)

// SweepHandler triggers expiry sweeps on demand.
type SweepHandler struct {
	Sweeper SweepRunner
}

// Run handles POST /api/sweep.
func (h *SweepHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Sweeper == nil {
		jsonError(w, http.StatusServiceUnavailable, "sweep not available")
		return
	}

	// A client hanging up should not cut the sweep short.
	res, err := h.Sweeper.RunNow(context.WithoutCancel(r.Context()))
	if errors.Is(err, notifier.ErrSweepInProgress) {
		jsonError(w, http.StatusConflict, "sweep already in progress")
		return
	}
	if err != nil {
		slog.Error("manual sweep failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "sweep failed")
		return
	}

	slog.Info("manual sweep finished", "scanned", res.Scanned, "notified", res.Notified, "failed", res.Failed)
	jsonResponse(w, http.StatusOK, res)
}
