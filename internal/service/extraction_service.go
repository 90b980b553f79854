package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledgerlens/internal/config"
	"ledgerlens/internal/domain"
	"ledgerlens/internal/metrics"
	"ledgerlens/internal/port"
	"ledgerlens/internal/reprocess"
	"ledgerlens/internal/validator"
	"ledgerlens/internal/vision"
)

// Initial extraction passes run at 0.1 / 2000; reprocessing attempts use
// their own colder constants inside the retry engine.
const (
	initialTemperature = 0.1
	initialMaxTokens   = 2000
)

// UploadedFile is one incoming multipart file part.
type UploadedFile struct {
	Filename string
	Content  []byte
}

// ExtractInput is the DTO for one extraction request. Multiple files act as
// ordered pages of the same document; a single PDF rides through whole.
type ExtractInput struct {
	Files      []UploadedFile
	Buyer      string
	Template   string
	ForceRetry bool
}

// ExtractionService defines the document extraction contract.
type ExtractionService interface {
	Process(ctx context.Context, input *ExtractInput) (*domain.ExtractionResult, error)
	Reprocess(ctx context.Context, input *ExtractInput) (*domain.ExtractionResult, error)
	ValidateData(doc domain.Document) domain.ValidationResult
}

// ExtractionOptions carries the static configuration of the service.
type ExtractionOptions struct {
	Provider          string
	Model             string
	MaxFileSizeBytes  int64
	AllowedExtensions []string
	ReviewBucket      string
	PresignExpirySecs int64
}

type extractionService struct {
	invoker   port.VisionInvoker
	prompts   *config.PromptStore
	validator *validator.FieldValidator
	engine    *reprocess.Engine
	usageRepo port.UsageRepository
	pricing   port.PricingSource
	storage   port.ObjectStorage
	email     port.EmailSender
	metrics   *metrics.Metrics
	opts      ExtractionOptions
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	invoker port.VisionInvoker,
	prompts *config.PromptStore,
	fieldValidator *validator.FieldValidator,
	engine *reprocess.Engine,
	usageRepo port.UsageRepository,
	pricing port.PricingSource,
	storage port.ObjectStorage,
	email port.EmailSender,
	m *metrics.Metrics,
	opts ExtractionOptions,
) ExtractionService {
	return &extractionService{
		invoker:   invoker,
		prompts:   prompts,
		validator: fieldValidator,
		engine:    engine,
		usageRepo: usageRepo,
		pricing:   pricing,
		storage:   storage,
		email:     email,
		metrics:   m,
		opts:      opts,
	}
}

// Process runs the plain extraction path: first parseable page wins,
// validation errors are attached to the result but never trigger retries.
func (s *extractionService) Process(ctx context.Context, input *ExtractInput) (*domain.ExtractionResult, error) {
	start := time.Now()

	if err := s.checkFiles(input.Files); err != nil {
		return nil, err
	}
	systemPrompt, userPrompt, err := s.buildPrompts(input.Template, input.Buyer, true)
	if err != nil {
		return nil, err
	}

	pages := s.pages(input.Files)
	filename := input.Files[0].Filename
	log.Printf("extractionService.Process: processing %s (%d page(s), template %s)", filename, len(pages), input.Template)

	var usage domain.TokenUsage
	var result *domain.ExtractionResult

	for i, page := range pages {
		result = s.invokePage(ctx, page, systemPrompt, userPrompt)
		accumulate(&usage, result.Usage)

		if !result.Success {
			log.Printf("extractionService.Process: page %d/%d failed: %s", i+1, len(pages), result.Error)
			continue
		}
		log.Printf("extractionService.Process: successfully processed page %d/%d", i+1, len(pages))

		if len(result.Data) > 0 {
			verdict := s.validator.Validate(result.Data)
			if verdict.IsValid {
				result.Data = verdict.Corrected
				if len(verdict.Warnings) > 0 {
					log.Printf("extractionService.Process: validation warnings: %v", verdict.Warnings)
				}
			} else {
				// Validation failures are reported, not retried, on this path.
				log.Printf("extractionService.Process: data validation failed: %v", verdict.Errors)
				result.ValidationErrors = verdict.Errors
				result.ValidationWarnings = verdict.Warnings
			}
		}
		break
	}

	s.recordUsage(ctx, filename, input, result, usage, len(pages))
	s.metrics.RecordExtraction(s.resultProvider(result), input.Template, len(pages), result.Success, time.Since(start))
	return result, nil
}

// Reprocess runs extraction with the adaptive retry loop: an invalid verdict
// (or force) hands the pages to the retry engine, and the first successful
// retry replaces the result.
func (s *extractionService) Reprocess(ctx context.Context, input *ExtractInput) (*domain.ExtractionResult, error) {
	start := time.Now()

	if err := s.checkFiles(input.Files); err != nil {
		return nil, err
	}
	systemPrompt, userPrompt, err := s.buildPrompts(input.Template, input.Buyer, false)
	if err != nil {
		return nil, err
	}

	pages := s.pages(input.Files)
	filename := input.Files[0].Filename
	log.Printf("extractionService.Reprocess: reprocessing %s (%d page(s), force_retry=%t)", filename, len(pages), input.ForceRetry)

	var usage domain.TokenUsage
	var result *domain.ExtractionResult

	for i, page := range pages {
		result = s.invokePage(ctx, page, systemPrompt, userPrompt)
		accumulate(&usage, result.Usage)

		if !result.Success {
			log.Printf("extractionService.Reprocess: page %d/%d failed: %s", i+1, len(pages), result.Error)
			continue
		}

		// A parseable response with no data still gets a bare invalid
		// verdict so the retry gate sees it.
		verdict := domain.ValidationResult{IsValid: false}
		if len(result.Data) > 0 {
			verdict = s.validator.Validate(result.Data)
		}

		if !verdict.IsValid || input.ForceRetry {
			log.Printf("extractionService.Reprocess: attempting reprocessing (force_retry=%t)", input.ForceRetry)
			outcomes := s.engine.ReprocessPages(ctx, pages, systemPrompt, userPrompt, verdict)

			replaced := false
			for j := range outcomes {
				accumulate(&usage, outcomes[j].Usage)
				s.metrics.RecordRetry(string(outcomes[j].RetryStrategy), outcomes[j].RetrySucceeded)
			}
			for j := range outcomes {
				if outcomes[j].RetrySucceeded {
					summary := reprocess.Summarize(outcomes[j])
					result = outcomeResult(&outcomes[j])
					result.Reprocessing = &summary
					replaced = true
					break
				}
			}
			if !replaced {
				var summary domain.ReprocessSummary
				if len(outcomes) > 0 {
					summary = reprocess.Summarize(outcomes[len(outcomes)-1])
				}
				result.Reprocessing = &summary
				if !verdict.IsValid {
					s.requestReview(ctx, filename, input, result, verdict)
				}
			}
		} else {
			result.Data = verdict.Corrected
			result.Reprocessing = &domain.ReprocessSummary{Attempted: false, Reason: "initial_validation_passed"}
		}

		s.recordUsage(ctx, filename, input, result, usage, len(pages))
		s.metrics.RecordExtraction(s.resultProvider(result), input.Template, len(pages), result.Success, time.Since(start))
		return result, nil
	}

	// No page produced a parseable initial result. Keep the last attempt's
	// raw fields for debugging but surface the aggregate failure.
	if result == nil {
		result = &domain.ExtractionResult{}
	}
	result.Success = false
	result.Data = nil
	result.Error = "No page could be processed successfully"
	result.Reprocessing = &domain.ReprocessSummary{Attempted: true, FinalStatus: "failed"}

	s.recordUsage(ctx, filename, input, result, usage, len(pages))
	s.metrics.RecordExtraction(s.resultProvider(result), input.Template, len(pages), false, time.Since(start))
	return result, nil
}

// ValidateData runs field validation standalone, without any model call.
func (s *extractionService) ValidateData(doc domain.Document) domain.ValidationResult {
	return s.validator.Validate(doc)
}

func (s *extractionService) checkFiles(files []UploadedFile) error {
	if len(files) == 0 {
		return domain.ErrMissingFile
	}
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		if !s.extAllowed(ext) {
			return fmt.Errorf("invalid file type %q, allowed: %s: %w",
				ext, strings.Join(s.opts.AllowedExtensions, ", "), domain.ErrUnsupportedFileType)
		}
		if int64(len(f.Content)) > s.opts.MaxFileSizeBytes {
			return fmt.Errorf("file too large, maximum size: %dMB: %w",
				s.opts.MaxFileSizeBytes/(1024*1024), domain.ErrFileTooLarge)
		}
	}
	return nil
}

func (s *extractionService) extAllowed(ext string) bool {
	for _, allowed := range s.opts.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// buildPrompts resolves the template and applies the request context: the
// system prompt gets the current-date note (the partial-date hint only on the
// plain processing path) and the user prompt gets the buyer substitution.
func (s *extractionService) buildPrompts(template, buyer string, partialDateHint bool) (string, string, error) {
	tpl, err := s.prompts.Get(template)
	if err != nil {
		return "", "", err
	}

	systemPrompt := tpl.SystemPrompt + dateContext(time.Now(), partialDateHint)

	buyerContext := ""
	if buyer != "" {
		buyerContext = "Note: The buyer/customer for this invoice is: " + buyer
	}
	userPrompt := strings.ReplaceAll(tpl.UserPrompt, "{buyer_context}", buyerContext)

	return systemPrompt, userPrompt, nil
}

func dateContext(now time.Time, partialDateHint bool) string {
	date := now.Format("2006-01-02")
	year := now.Year()
	ctx := fmt.Sprintf("\n\nCurrent date: %s. When inferring dates without explicit years, assume the current year %d unless context suggests otherwise.", date, year)
	if partialDateHint {
		ctx += fmt.Sprintf(" For partial dates (like 'Jan 15' or '1/15'), default to %d.", year)
	}
	return ctx
}

func (s *extractionService) pages(files []UploadedFile) []port.PageImage {
	pages := make([]port.PageImage, 0, len(files))
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		contentType := mime.TypeByExtension(ext)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		pages = append(pages, port.PageImage{Data: f.Content, ContentType: contentType})
	}
	return pages
}

// invokePage calls the model once and folds the outcome into a result. It
// never returns an error: transport failures and unparseable model output
// both become failed results, the latter keeping the raw text and usage.
func (s *extractionService) invokePage(ctx context.Context, page port.PageImage, systemPrompt, userPrompt string) *domain.ExtractionResult {
	out, err := s.invoker.Invoke(ctx, port.InvokeInput{
		Page:         page,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  initialTemperature,
		MaxTokens:    initialMaxTokens,
	})
	if err != nil {
		var parseErr *vision.ResponseParseError
		if errors.As(err, &parseErr) {
			return &domain.ExtractionResult{
				Success:     false,
				Error:       err.Error(),
				RawResponse: parseErr.RawText,
				Usage:       parseErr.Usage,
				Provider:    parseErr.Provider,
			}
		}
		return &domain.ExtractionResult{Success: false, Error: err.Error()}
	}

	return &domain.ExtractionResult{
		Success:     true,
		Data:        out.Data,
		RawResponse: out.RawText,
		Usage:       out.Usage,
		Model:       out.Model,
		Provider:    out.Provider,
	}
}

func outcomeResult(o *domain.ReprocessOutcome) *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Success:     o.Success,
		Data:        o.Data,
		Error:       o.Error,
		RawResponse: o.RawResponse,
		Usage:       o.Usage,
		Model:       o.Model,
		Provider:    o.Provider,
	}
}

// recordUsage persists one usage row per request with the token counts
// accumulated over every model invocation the request spent, including retry
// attempts. Failures are logged but never block the response.
func (s *extractionService) recordUsage(ctx context.Context, filename string, input *ExtractInput, result *domain.ExtractionResult, usage domain.TokenUsage, numPages int) {
	provider := s.resultProvider(result)
	model := result.Model
	if model == "" {
		model = s.opts.Model
	}

	promptCost, completionCost, totalCost := s.pricing.Cost(ctx, provider, model, usage.PromptTokens, usage.CompletionTokens)

	rec := &domain.UsageRecord{
		Filename:         filename,
		Buyer:            input.Buyer,
		Template:         input.Template,
		Provider:         provider,
		Model:            model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		PromptCost:       promptCost,
		CompletionCost:   completionCost,
		TotalCost:        totalCost,
		Success:          result.Success,
		ErrorMessage:     result.Error,
		NumPages:         numPages,
	}
	if err := s.usageRepo.Insert(ctx, rec); err != nil {
		log.Printf("extractionService.recordUsage: failed to save usage for %s: %v", filename, err)
	}

	s.metrics.RecordTokenUsage(provider, model, usage.PromptTokens, usage.CompletionTokens)
	s.metrics.RecordCost(provider, model, totalCost)
}

func (s *extractionService) resultProvider(result *domain.ExtractionResult) string {
	if result.Provider != "" {
		return result.Provider
	}
	return s.opts.Provider
}

// requestReview archives the failed extraction to object storage and notifies
// the reviewer address. Both steps are best-effort.
func (s *extractionService) requestReview(ctx context.Context, filename string, input *ExtractInput, result *domain.ExtractionResult, verdict domain.ValidationResult) {
	artifactURL := s.archiveReviewArtifact(ctx, filename, input, result, verdict)

	if s.email == nil {
		return
	}
	reviewErrors := verdict.Errors
	if result.Reprocessing != nil && len(result.Reprocessing.FinalErrors) > 0 {
		reviewErrors = result.Reprocessing.FinalErrors
	}
	req := port.ReviewRequest{
		Filename:    filename,
		Template:    input.Template,
		Buyer:       input.Buyer,
		Errors:      reviewErrors,
		ArtifactURL: artifactURL,
	}
	if err := s.email.SendReviewRequest(ctx, req); err != nil {
		log.Printf("extractionService.requestReview: failed to send review email for %s: %v", filename, err)
	}
}

func (s *extractionService) archiveReviewArtifact(ctx context.Context, filename string, input *ExtractInput, result *domain.ExtractionResult, verdict domain.ValidationResult) string {
	if s.storage == nil || s.opts.ReviewBucket == "" {
		return ""
	}

	artifact := map[string]interface{}{
		"filename":             filename,
		"template":             input.Template,
		"buyer":                input.Buyer,
		"extracted_data":       result.Data,
		"raw_response":         result.RawResponse,
		"original_errors":      verdict.Errors,
		"reprocessing_summary": result.Reprocessing,
		"created_at":           time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(artifact)
	if err != nil {
		log.Printf("extractionService.archiveReviewArtifact: failed to marshal artifact for %s: %v", filename, err)
		return ""
	}

	key := fmt.Sprintf("reviews/%s.json", uuid.New())
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.opts.ReviewBucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
		Size:        int64(len(body)),
	})
	if err != nil {
		log.Printf("extractionService.archiveReviewArtifact: failed to upload artifact for %s: %v", filename, err)
		return ""
	}
	log.Printf("extractionService.archiveReviewArtifact: archived %s for review as %s", filename, key)

	url, err := s.storage.GetPresignedURL(ctx, s.opts.ReviewBucket, key, s.opts.PresignExpirySecs)
	if err != nil {
		log.Printf("extractionService.archiveReviewArtifact: failed to presign artifact %s: %v", key, err)
		return ""
	}
	return url
}

func accumulate(total *domain.TokenUsage, u *domain.TokenUsage) {
	if u == nil {
		return
	}
	total.PromptTokens += u.PromptTokens
	total.CompletionTokens += u.CompletionTokens
	total.TotalTokens += u.TotalTokens
}
