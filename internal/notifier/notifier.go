// Package notifier announces pantry products that are about to expire.
//
// A Notifier has two entry points: Sweep scans every product with an expiry
// date and is run periodically by a Scheduler, CheckProduct looks at a single
// product right after it was saved. Both deliver through a Gateway and never
// fail because of it: delivery errors are logged and the work carries on.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/dispensa/internal/expiry"
	"github.com/erazemk/dispensa/internal/model"
)

// Gateway delivers chat messages.
type Gateway interface {
	SendText(ctx context.Context, text string) error
	SendPhoto(ctx context.Context, photoURL, caption string) error
}

// Source loads the products a sweep should look at.
type Source interface {
	ListProductsWithExpiry(ctx context.Context) ([]model.Product, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context) ([]model.Product, error)

// ListProductsWithExpiry calls f(ctx).
func (f SourceFunc) ListProductsWithExpiry(ctx context.Context) ([]model.Product, error) {
	return f(ctx)
}

// SweepResult summarizes one pass over the inventory.
type SweepResult struct {
	Scanned  int `json:"scanned"`
	Skipped  int `json:"skipped"`  // missing or unparseable expiry
	Notified int `json:"notified"` // delivered
	Failed   int `json:"failed"`   // gateway errors
}

// Notifier classifies products by days until expiry and sends the matching
// notification.
type Notifier struct {
	source  Source
	gateway Gateway
	now     func() time.Time
	logger  *slog.Logger
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithClock overrides the time source used to determine today.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		if now != nil {
			n.now = now
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// New creates a Notifier reading from source and delivering through gateway.
func New(source Source, gateway Gateway, opts ...Option) *Notifier {
	n := &Notifier{
		source:  source,
		gateway: gateway,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Sweep runs one pass over every product with an expiry date. Products are
// notified when they are exactly 7, 3 or 1 days from expiry. Nothing is
// remembered between runs, so sweeping twice on the same day sends the same
// messages twice.
//
// Only a failure to load products is returned. Cancelling ctx stops the pass
// between products.
func (n *Notifier) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	products, err := n.source.ListProductsWithExpiry(ctx)
	if err != nil {
		return res, fmt.Errorf("loading products: %w", err)
	}

	now := n.now()
	for _, p := range products {
		if ctx.Err() != nil {
			n.logger.Info("expiry sweep interrupted", "scanned", res.Scanned, "remaining", len(products)-res.Scanned)
			break
		}
		res.Scanned++

		date, ok := expiry.ParseDate(p.ExpiryDate)
		if !ok {
			res.Skipped++
			continue
		}

		tier := expiry.ClassifySweep(expiry.DaysUntil(date, now))
		if tier == expiry.TierNone {
			continue
		}

		if n.dispatch(ctx, tier, p.Name, p.ExpiryDate, p.Quantity, p.ImageURL) {
			res.Notified++
		} else {
			res.Failed++
		}
	}

	return res, nil
}

// CheckProduct evaluates a product that was just saved, using the values as
// they were submitted. It notifies when the product has already expired or
// expires today, and returns the tier it settled on. It never fails: delivery
// problems are only logged.
func (n *Notifier) CheckProduct(ctx context.Context, name, rawExpiry string, quantity int, imageURL string) expiry.Tier {
	date, ok := expiry.ParseDate(rawExpiry)
	if !ok {
		return expiry.TierNone
	}

	tier := expiry.ClassifyOnSave(expiry.DaysUntil(date, n.now()))
	if tier == expiry.TierNone {
		return tier
	}

	n.dispatch(ctx, tier, name, rawExpiry, quantity, imageURL)
	return tier
}

// dispatch sends a photo when an image reference is present and plain text
// otherwise. It reports whether delivery succeeded.
func (n *Notifier) dispatch(ctx context.Context, tier expiry.Tier, name, rawExpiry string, quantity int, imageURL string) bool {
	caption := expiry.Caption(tier, name, rawExpiry, quantity)

	var err error
	if imageURL = strings.TrimSpace(imageURL); imageURL != "" {
		err = n.gateway.SendPhoto(ctx, imageURL, caption)
	} else {
		err = n.gateway.SendText(ctx, caption)
	}
	if err != nil {
		n.logger.Warn("failed to send expiry notification", "product", name, "tier", tier, "error", err)
		return false
	}

	n.logger.Info("expiry notification sent", "product", name, "tier", tier, "expiry", rawExpiry)
	return true
}
