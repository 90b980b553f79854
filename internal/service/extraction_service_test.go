package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgerlens/internal/config"
	"ledgerlens/internal/domain"
	"ledgerlens/internal/metrics"
	"ledgerlens/internal/port"
	"ledgerlens/internal/reprocess"
	"ledgerlens/internal/service"
	"ledgerlens/internal/validator"
	"ledgerlens/internal/vision"
	"ledgerlens/mocks"
)

const testPromptsYAML = `default_invoice:
  description: "Standard invoice extraction"
  system_prompt: "You are a precise invoice data extraction engine."
  user_prompt: "Extract the invoice fields as JSON. {buyer_context}"
`

type extractionMocks struct {
	invoker   *mocks.MockVisionInvoker
	usageRepo *mocks.MockUsageRepository
	pricing   *mocks.MockPricingSource
	storage   *mocks.MockObjectStorage
	email     *mocks.MockEmailSender
}

func setupExtractionService(t *testing.T) (service.ExtractionService, *extractionMocks) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPromptsYAML), 0o644))
	store, err := config.NewPromptStore(path)
	require.NoError(t, err)

	m := &extractionMocks{
		invoker:   new(mocks.MockVisionInvoker),
		usageRepo: new(mocks.MockUsageRepository),
		pricing:   new(mocks.MockPricingSource),
		storage:   new(mocks.MockObjectStorage),
		email:     new(mocks.MockEmailSender),
	}
	fieldValidator := validator.NewFieldValidator()
	engine := reprocess.NewEngine(m.invoker, fieldValidator)

	svc := service.NewExtractionService(
		m.invoker, store, fieldValidator, engine,
		m.usageRepo, m.pricing, m.storage, m.email,
		metrics.New(),
		service.ExtractionOptions{
			Provider:          "vllm",
			Model:             "qwen2.5-vl-7b",
			MaxFileSizeBytes:  10 * 1024 * 1024,
			AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".webp", ".pdf"},
			ReviewBucket:      "extraction-reviews",
			PresignExpirySecs: 3600,
		},
	)
	return svc, m
}

func validInvoiceDoc() domain.Document {
	return domain.Document{
		"service_provider": map[string]interface{}{
			"name":    "Magyar Telekom Nyrt",
			"address": "Krisztina krt. 55, Budapest 1013, Hungary",
		},
		"amount":   4500.0,
		"currency": "HUF",
	}
}

func invalidAddressDoc() domain.Document {
	return domain.Document{
		"service_provider": map[string]interface{}{
			"name":    "Magyar Telekom Nyrt",
			"address": "Budapest",
		},
		"amount":   4500.0,
		"currency": "HUF",
	}
}

func visionOut(doc domain.Document, promptTokens, completionTokens int) *port.InvokeOutput {
	return &port.InvokeOutput{
		Data:    doc,
		RawText: `{"amount": 4500}`,
		Usage: &domain.TokenUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
		Model:    "qwen2.5-vl-7b",
		Provider: "vllm",
	}
}

func jpgUpload(name string) service.UploadedFile {
	return service.UploadedFile{Filename: name, Content: []byte("fake image bytes")}
}

// initialInvoke matches the first-pass model call, retryInvoke the colder
// reprocessing calls issued by the retry engine.
func initialInvoke() interface{} {
	return mock.MatchedBy(func(in port.InvokeInput) bool { return in.Temperature == 0.1 })
}

func retryInvoke() interface{} {
	return mock.MatchedBy(func(in port.InvokeInput) bool { return in.Temperature == 0.05 })
}

// --- Process ---

func TestExtractionService_Process_Success(t *testing.T) {
	svc, m := setupExtractionService(t)

	var captured port.InvokeInput
	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(port.InvokeInput) }).
		Return(visionOut(validInvoiceDoc(), 1200, 150), nil)
	m.pricing.On("Cost", mock.Anything, "vllm", "qwen2.5-vl-7b", 1200, 150).
		Return(0.00024, 0.00003, 0.00027)
	m.usageRepo.On("Insert", mock.Anything, mock.MatchedBy(func(rec *domain.UsageRecord) bool {
		return rec.Success &&
			rec.Filename == "invoice.jpg" &&
			rec.Buyer == "Acme Kft" &&
			rec.Template == "default_invoice" &&
			rec.NumPages == 1 &&
			rec.TotalTokens == 1350 &&
			rec.TotalCost == 0.00027
	})).Return(nil)

	result, err := svc.Process(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("invoice.jpg")},
		Buyer:    "Acme Kft",
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Empty(t, result.ValidationErrors)
	assert.Nil(t, result.Reprocessing)

	sp, ok := result.Data["service_provider"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Magyar Telekom Nyrt", sp["name"])
	assert.Equal(t, "Krisztina krt. 55, Budapest 1013, Hungary", sp["address"])
	assert.Equal(t, 4500.0, result.Data["amount"])

	assert.Contains(t, captured.SystemPrompt, "Current date: "+time.Now().Format("2006-01-02"))
	assert.Contains(t, captured.SystemPrompt, "For partial dates")
	assert.Contains(t, captured.UserPrompt, "Note: The buyer/customer for this invoice is: Acme Kft")
	assert.NotContains(t, captured.UserPrompt, "{buyer_context}")
	assert.Equal(t, "image/jpeg", captured.Page.ContentType)

	m.usageRepo.AssertExpectations(t)
	m.pricing.AssertExpectations(t)
}

func TestExtractionService_Process_EmptyBuyerDropsPlaceholder(t *testing.T) {
	svc, m := setupExtractionService(t)

	var captured port.InvokeInput
	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(port.InvokeInput) }).
		Return(visionOut(validInvoiceDoc(), 800, 90), nil)
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Process(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("scan.jpg")},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.NotContains(t, captured.UserPrompt, "{buyer_context}")
	assert.NotContains(t, captured.UserPrompt, "Note: The buyer")
}

func TestExtractionService_Process_ValidationFailureAttachesErrors(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Return(visionOut(invalidAddressDoc(), 1000, 100), nil)
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.MatchedBy(func(rec *domain.UsageRecord) bool {
		return rec.Success
	})).Return(nil)

	result, err := svc.Process(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("invoice.jpg")},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.ValidationErrors,
		"service_provider.address: Address should contain at least 2 commas separating street, city, and country")
	assert.Nil(t, result.Reprocessing)

	// The plain processing path never retries.
	m.invoker.AssertNumberOfCalls(t, "Invoke", 1)
	m.usageRepo.AssertExpectations(t)
}

func TestExtractionService_Process_FirstPageFailsSecondSucceeds(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Return(nil, errors.New("model unavailable")).Once()
	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Return(visionOut(validInvoiceDoc(), 900, 110), nil).Once()
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.MatchedBy(func(rec *domain.UsageRecord) bool {
		return rec.Success && rec.NumPages == 2 && rec.PromptTokens == 900
	})).Return(nil)

	result, err := svc.Process(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("page1.jpg"), jpgUpload("page2.jpg")},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.True(t, result.Success)
	m.invoker.AssertNumberOfCalls(t, "Invoke", 2)
	m.usageRepo.AssertExpectations(t)
}

func TestExtractionService_Process_AllPagesFail(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.MatchedBy(func(rec *domain.UsageRecord) bool {
		return !rec.Success && rec.ErrorMessage == "connection refused" && rec.TotalTokens == 0
	})).Return(nil)

	result, err := svc.Process(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("page1.jpg"), jpgUpload("page2.jpg")},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "connection refused", result.Error)
	m.invoker.AssertNumberOfCalls(t, "Invoke", 2)
	m.usageRepo.AssertExpectations(t)
}

func TestExtractionService_Process_ParseFailureKeepsRawAndUsage(t *testing.T) {
	svc, m := setupExtractionService(t)

	parseErr := &vision.ResponseParseError{
		Provider: "vllm",
		RawText:  "the invoice shows a total of 4500 HUF",
		Usage:    &domain.TokenUsage{PromptTokens: 1000, CompletionTokens: 80, TotalTokens: 1080},
		Err:      errors.New("invalid character 't' looking for beginning of value"),
	}
	m.invoker.On("Invoke", mock.Anything, mock.Anything).Return(nil, parseErr)
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.MatchedBy(func(rec *domain.UsageRecord) bool {
		return !rec.Success && rec.PromptTokens == 1000 && rec.TotalTokens == 1080
	})).Return(nil)

	result, err := svc.Process(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("invoice.jpg")},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, parseErr.Error(), result.Error)
	assert.Equal(t, "the invoice shows a total of 4500 HUF", result.RawResponse)
	m.usageRepo.AssertExpectations(t)
}

func TestExtractionService_Process_RejectsUnsupportedExtension(t *testing.T) {
	svc, m := setupExtractionService(t)

	result, err := svc.Process(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{{Filename: "invoice.gif", Content: []byte("gif")}},
		Template: "default_invoice",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.Contains(t, err.Error(), ".gif")
	m.invoker.AssertNumberOfCalls(t, "Invoke", 0)
}

func TestExtractionService_Process_RejectsOversizeFile(t *testing.T) {
	svc, m := setupExtractionService(t)

	result, err := svc.Process(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{{Filename: "huge.jpg", Content: make([]byte, 10*1024*1024+1)}},
		Template: "default_invoice",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Contains(t, err.Error(), "maximum size: 10MB")
	m.invoker.AssertNumberOfCalls(t, "Invoke", 0)
}

func TestExtractionService_Process_UnknownTemplate(t *testing.T) {
	svc, m := setupExtractionService(t)

	result, err := svc.Process(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("invoice.jpg")},
		Template: "purchase_order",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "default_invoice")
	m.invoker.AssertNumberOfCalls(t, "Invoke", 0)
}

func TestExtractionService_Process_NoFiles(t *testing.T) {
	svc, _ := setupExtractionService(t)

	result, err := svc.Process(context.Background(), &service.ExtractInput{
		Template: "default_invoice",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMissingFile)
}

func TestExtractionService_Process_PDFPassedThroughWhole(t *testing.T) {
	svc, m := setupExtractionService(t)

	var captured port.InvokeInput
	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(port.InvokeInput) }).
		Return(visionOut(validInvoiceDoc(), 2000, 200), nil)
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Process(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{{Filename: "statement.pdf", Content: []byte("%PDF-1.4 fake")}},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "application/pdf", captured.Page.ContentType)
	assert.Equal(t, []byte("%PDF-1.4 fake"), captured.Page.Data)
	m.invoker.AssertNumberOfCalls(t, "Invoke", 1)
}

// --- Reprocess ---

func TestExtractionService_Reprocess_InitialValidationPassed(t *testing.T) {
	svc, m := setupExtractionService(t)

	var captured port.InvokeInput
	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(port.InvokeInput) }).
		Return(visionOut(validInvoiceDoc(), 1200, 150), nil)
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.MatchedBy(func(rec *domain.UsageRecord) bool {
		return rec.Success && rec.TotalTokens == 1350
	})).Return(nil)

	result, err := svc.Reprocess(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("invoice.jpg")},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.True(t, result.Success)

	sp, ok := result.Data["service_provider"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Krisztina krt. 55, Budapest 1013, Hungary", sp["address"])

	require.NotNil(t, result.Reprocessing)
	assert.False(t, result.Reprocessing.Attempted)
	assert.Equal(t, "initial_validation_passed", result.Reprocessing.Reason)

	// The reprocess path omits the partial-date hint from the date context.
	assert.Contains(t, captured.SystemPrompt, "Current date:")
	assert.NotContains(t, captured.SystemPrompt, "For partial dates")

	m.invoker.AssertNumberOfCalls(t, "Invoke", 1)
	m.usageRepo.AssertExpectations(t)
}

func TestExtractionService_Reprocess_RetrySucceeds(t *testing.T) {
	svc, m := setupExtractionService(t)

	var retryInput port.InvokeInput
	m.invoker.On("Invoke", mock.Anything, initialInvoke()).
		Return(visionOut(invalidAddressDoc(), 1000, 100), nil)
	m.invoker.On("Invoke", mock.Anything, retryInvoke()).
		Run(func(args mock.Arguments) { retryInput = args.Get(1).(port.InvokeInput) }).
		Return(visionOut(validInvoiceDoc(), 1100, 120), nil)
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.MatchedBy(func(rec *domain.UsageRecord) bool {
		return rec.Success &&
			rec.PromptTokens == 2100 &&
			rec.CompletionTokens == 220 &&
			rec.TotalTokens == 2320
	})).Return(nil)

	result, err := svc.Reprocess(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("invoice.jpg")},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.True(t, result.Success)

	sp, ok := result.Data["service_provider"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Krisztina krt. 55, Budapest 1013, Hungary", sp["address"])

	summary := result.Reprocessing
	require.NotNil(t, summary)
	assert.True(t, summary.Attempted)
	assert.True(t, summary.Successful)
	assert.Equal(t, 1, summary.Attempts)
	assert.Equal(t, domain.StrategyAddressFormat, summary.Strategy)
	assert.Equal(t, "success", summary.FinalStatus)
	assert.NotEmpty(t, summary.OriginalErrors)

	assert.Contains(t, retryInput.SystemPrompt, "RETRY ATTEMPT 1")
	assert.Contains(t, retryInput.UserPrompt, "CRITICAL ADDRESS FORMATTING REQUIREMENTS")
	assert.Equal(t, 2500, retryInput.MaxTokens)

	m.invoker.AssertNumberOfCalls(t, "Invoke", 2)
	m.email.AssertNumberOfCalls(t, "SendReviewRequest", 0)
	m.storage.AssertNumberOfCalls(t, "Upload", 0)
	m.usageRepo.AssertExpectations(t)
}

func TestExtractionService_Reprocess_RetriesExhaustedRequestsReview(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.invoker.On("Invoke", mock.Anything, initialInvoke()).
		Return(visionOut(invalidAddressDoc(), 1000, 100), nil)
	m.invoker.On("Invoke", mock.Anything, retryInvoke()).
		Return(visionOut(invalidAddressDoc(), 1100, 120), nil)
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.MatchedBy(func(rec *domain.UsageRecord) bool {
		// Initial pass plus two retry attempts, all accumulated.
		return rec.Success &&
			rec.PromptTokens == 3200 &&
			rec.CompletionTokens == 340 &&
			rec.TotalTokens == 3540
	})).Return(nil)

	m.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "extraction-reviews" &&
			strings.HasPrefix(in.Key, "reviews/") &&
			strings.HasSuffix(in.Key, ".json") &&
			in.ContentType == "application/json"
	})).Return(&port.UploadOutput{Location: "s3://extraction-reviews/reviews/x.json"}, nil)
	m.storage.On("GetPresignedURL", mock.Anything, "extraction-reviews", mock.AnythingOfType("string"), int64(3600)).
		Return("https://signed.example/reviews/x.json", nil)
	m.email.On("SendReviewRequest", mock.Anything, mock.MatchedBy(func(req port.ReviewRequest) bool {
		return req.Filename == "invoice.jpg" &&
			req.ArtifactURL == "https://signed.example/reviews/x.json" &&
			len(req.Errors) > 0
	})).Return(nil)

	result, err := svc.Reprocess(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("invoice.jpg")},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.True(t, result.Success)

	summary := result.Reprocessing
	require.NotNil(t, summary)
	assert.True(t, summary.Attempted)
	assert.False(t, summary.Successful)
	assert.Equal(t, 2, summary.Attempts)
	assert.Equal(t, "failed", summary.FinalStatus)
	assert.NotEmpty(t, summary.FinalErrors)
	assert.Contains(t, summary.Recommendation, "Manual review recommended")

	m.invoker.AssertNumberOfCalls(t, "Invoke", 3)
	m.storage.AssertExpectations(t)
	m.email.AssertExpectations(t)
	m.usageRepo.AssertExpectations(t)
}

func TestExtractionService_Reprocess_ForceRetryOnValidData(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Return(visionOut(validInvoiceDoc(), 1200, 150), nil)
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Reprocess(context.Background(), &service.ExtractInput{
		Files:      []service.UploadedFile{jpgUpload("invoice.jpg")},
		Template:   "default_invoice",
		ForceRetry: true,
	})

	assert.NoError(t, err)
	assert.True(t, result.Success)

	// A valid verdict is not retryable, so the forced run ends without a
	// single retry invocation and without a review request.
	summary := result.Reprocessing
	require.NotNil(t, summary)
	assert.False(t, summary.Attempted)
	assert.Equal(t, 0, summary.Attempts)
	assert.Equal(t, "failed", summary.FinalStatus)

	m.invoker.AssertNumberOfCalls(t, "Invoke", 1)
	m.email.AssertNumberOfCalls(t, "SendReviewRequest", 0)
	m.storage.AssertNumberOfCalls(t, "Upload", 0)
}

func TestExtractionService_Reprocess_NoPageParseable(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Return(nil, errors.New("model unavailable"))
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.MatchedBy(func(rec *domain.UsageRecord) bool {
		return !rec.Success && rec.ErrorMessage == "No page could be processed successfully"
	})).Return(nil)

	result, err := svc.Reprocess(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("invoice.jpg")},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Equal(t, "No page could be processed successfully", result.Error)

	summary := result.Reprocessing
	require.NotNil(t, summary)
	assert.True(t, summary.Attempted)
	assert.Equal(t, "failed", summary.FinalStatus)

	m.email.AssertNumberOfCalls(t, "SendReviewRequest", 0)
	m.storage.AssertNumberOfCalls(t, "Upload", 0)
	m.usageRepo.AssertExpectations(t)
}

func TestExtractionService_Reprocess_EmptyDataTriggersReview(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.invoker.On("Invoke", mock.Anything, mock.Anything).
		Return(&port.InvokeOutput{
			RawText:  "no structured fields found",
			Usage:    &domain.TokenUsage{PromptTokens: 700, CompletionTokens: 20, TotalTokens: 720},
			Model:    "qwen2.5-vl-7b",
			Provider: "vllm",
		}, nil)
	m.pricing.On("Cost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, 0.0, 0.0)
	m.usageRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	m.storage.On("Upload", mock.Anything, mock.Anything).
		Return(&port.UploadOutput{}, nil)
	m.storage.On("GetPresignedURL", mock.Anything, "extraction-reviews", mock.AnythingOfType("string"), int64(3600)).
		Return("https://signed.example/reviews/y.json", nil)
	m.email.On("SendReviewRequest", mock.Anything, mock.MatchedBy(func(req port.ReviewRequest) bool {
		return req.Filename == "empty.jpg" && len(req.Errors) == 0
	})).Return(nil)

	result, err := svc.Reprocess(context.Background(), &service.ExtractInput{
		Files:    []service.UploadedFile{jpgUpload("empty.jpg")},
		Template: "default_invoice",
	})

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Data)

	// An empty extraction is invalid but carries no retryable errors, so the
	// engine declines immediately and the document goes straight to review.
	require.NotNil(t, result.Reprocessing)
	assert.False(t, result.Reprocessing.Attempted)

	m.invoker.AssertNumberOfCalls(t, "Invoke", 1)
	m.storage.AssertExpectations(t)
	m.email.AssertExpectations(t)
}

// --- ValidateData ---

func TestExtractionService_ValidateData(t *testing.T) {
	svc, _ := setupExtractionService(t)

	verdict := svc.ValidateData(validInvoiceDoc())
	assert.True(t, verdict.IsValid)
	sp, ok := verdict.Corrected["service_provider"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Krisztina krt. 55, Budapest 1013, Hungary", sp["address"])

	verdict = svc.ValidateData(invalidAddressDoc())
	assert.False(t, verdict.IsValid)
	assert.NotEmpty(t, verdict.Errors)
}
