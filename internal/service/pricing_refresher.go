package service

import (
	"context"
	"log"
	"time"
)

// PricingRefresher periodically re-fetches the model pricing table so cost
// lookups on the request path work from a warm cache.
type PricingRefresher struct {
	source   RefreshablePricing
	interval time.Duration
}

// RefreshablePricing is the slice of the pricing source the refresher needs.
type RefreshablePricing interface {
	Refresh(ctx context.Context) (int, error)
}

// NewPricingRefresher creates a new PricingRefresher.
func NewPricingRefresher(source RefreshablePricing, interval time.Duration) *PricingRefresher {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PricingRefresher{source: source, interval: interval}
}

// Start runs the refresh loop until ctx is canceled. The first refresh runs
// immediately so startup does not wait a full interval for pricing data.
func (w *PricingRefresher) Start(ctx context.Context) {
	log.Printf("pricingRefresher: started (interval=%s)", w.interval)

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("pricingRefresher: shutdown complete")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *PricingRefresher) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	count, err := w.source.Refresh(refreshCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("pricingRefresher: refresh failed, serving cached or fallback pricing: %v", err)
		return
	}
	log.Printf("pricingRefresher: loaded pricing for %d models", count)
}
