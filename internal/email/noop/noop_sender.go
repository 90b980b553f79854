package noop

import (
	"context"
	"log"
	"strings"

	"ledgerlens/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs review requests to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendReviewRequest(_ context.Context, req port.ReviewRequest) error {
	log.Printf("[NOOP EMAIL] Review requested for %s (template=%s, buyer=%s): %d error(s) [%s] artifact=%s",
		req.Filename, req.Template, req.Buyer, len(req.Errors), strings.Join(req.Errors, "; "), req.ArtifactURL)
	return nil
}
