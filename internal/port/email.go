package port

import "context"

// ReviewRequest carries the details of a document whose validation errors
// could not be resolved automatically.
type ReviewRequest struct {
	Filename    string
	Template    string
	Buyer       string
	Errors      []string
	ArtifactURL string
}

// EmailSender defines the contract for sending review notifications.
type EmailSender interface {
	SendReviewRequest(ctx context.Context, req ReviewRequest) error
}
