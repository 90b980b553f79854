package ses

import (
	"context"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"ledgerlens/internal/port"
)

type sesSender struct {
	client        *sesv2.Client
	fromAddress   string
	fromName      string
	reviewAddress string
}

// NewSESSender creates a new SES-backed EmailSender that notifies the
// configured review address when a document needs manual attention.
func NewSESSender(region, fromAddress, fromName, reviewAddress string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:        client,
		fromAddress:   fromAddress,
		fromName:      fromName,
		reviewAddress: reviewAddress,
	}, nil
}

func (s *sesSender) SendReviewRequest(ctx context.Context, req port.ReviewRequest) error {
	subject := fmt.Sprintf("Document review needed: %s", req.Filename)
	htmlBody := buildReviewHTML(req)
	textBody := buildReviewText(req)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.reviewAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReviewText(req port.ReviewRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Automatic reprocessing could not resolve all validation errors for %s.\n\n", req.Filename)
	fmt.Fprintf(&b, "Template: %s\n", req.Template)
	if req.Buyer != "" {
		fmt.Fprintf(&b, "Buyer: %s\n", req.Buyer)
	}
	b.WriteString("\nRemaining errors:\n")
	for _, e := range req.Errors {
		fmt.Fprintf(&b, "  - %s\n", e)
	}
	if req.ArtifactURL != "" {
		fmt.Fprintf(&b, "\nExtracted data and raw model output:\n%s\n", req.ArtifactURL)
	}
	b.WriteString("\nLedgerLens")
	return b.String()
}

func buildReviewHTML(req port.ReviewRequest) string {
	var errItems strings.Builder
	for _, e := range req.Errors {
		fmt.Fprintf(&errItems, "    <li>%s</li>\n", html.EscapeString(e))
	}

	buyerRow := ""
	if req.Buyer != "" {
		buyerRow = fmt.Sprintf("  <p><strong>Buyer:</strong> %s</p>\n", html.EscapeString(req.Buyer))
	}

	artifactBlock := ""
	if req.ArtifactURL != "" {
		artifactBlock = fmt.Sprintf(`  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Extracted Data</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
`, req.ArtifactURL, html.EscapeString(req.ArtifactURL))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Document review needed</h2>
  <p>Automatic reprocessing could not resolve all validation errors for <strong>%s</strong>.</p>
  <p><strong>Template:</strong> %s</p>
%s  <p>Remaining errors:</p>
  <ul style="color: #B91C1C;">
%s  </ul>
%s  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">LedgerLens - Document Extraction Pipeline</p>
</body>
</html>`, html.EscapeString(req.Filename), html.EscapeString(req.Template), buyerRow, errItems.String(), artifactBlock)
}
