package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ledgerlens/internal/domain"
	"ledgerlens/internal/service"
)

const defaultTemplate = "default_invoice"

// DocumentHandler handles document extraction endpoints.
type DocumentHandler struct {
	extractionService service.ExtractionService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(extractionService service.ExtractionService) *DocumentHandler {
	return &DocumentHandler{extractionService: extractionService}
}

// Process handles POST /api/v1/documents/process
// @Summary Extract structured data from a document
// @Description Extract invoice data from uploaded page images (or a single PDF). Validation errors are attached to the result; no automatic reprocessing happens on this endpoint.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Page image (JPG, PNG) or PDF; repeat the field for multi-page documents"
// @Param buyer formData string false "Buyer/customer name hint for the extraction prompt"
// @Param template formData string false "Prompt template name" default(default_invoice)
// @Success 200 {object} domain.ExtractionResult "Extraction result"
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type, or unknown template"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security ApiKeyAuth
// @Router /documents/process [post]
func (h *DocumentHandler) Process(c *gin.Context) {
	input, err := bindExtractInput(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.extractionService.Process(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	// The extraction result carries its own success/error fields, so it goes
	// out bare rather than inside the standard envelope.
	c.JSON(http.StatusOK, result)
}

// Reprocess handles POST /api/v1/documents/reprocess
// @Summary Extract with adaptive reprocessing
// @Description Extract invoice data and, when validation fails (or force_retry is set), retry with error-targeted prompt adjustments. Terminal failures archive a review artifact and notify the reviewer.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Page image (JPG, PNG) or PDF; repeat the field for multi-page documents"
// @Param buyer formData string false "Buyer/customer name hint for the extraction prompt"
// @Param template formData string false "Prompt template name" default(default_invoice)
// @Param force_retry formData bool false "Run the retry loop even when initial validation passes"
// @Success 200 {object} domain.ExtractionResult "Extraction result with reprocessing summary"
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type, or unknown template"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security ApiKeyAuth
// @Router /documents/reprocess [post]
func (h *DocumentHandler) Reprocess(c *gin.Context) {
	input, err := bindExtractInput(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.extractionService.Reprocess(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Validate handles POST /api/v1/documents/validate
// @Summary Validate extracted data
// @Description Run field validation on already-extracted invoice data without any model call
// @Tags documents
// @Accept json
// @Produce json
// @Param document body domain.Document true "Extracted invoice data"
// @Success 200 {object} Response{data=ValidateResponse} "Validation verdict with corrected data"
// @Failure 400 {object} ErrorResponseBody "Invalid JSON body"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security ApiKeyAuth
// @Router /documents/validate [post]
func (h *DocumentHandler) Validate(c *gin.Context) {
	var doc domain.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must be a JSON object of extracted data")
		return
	}

	verdict := h.extractionService.ValidateData(doc)
	RespondOK(c, gin.H{
		"is_valid":            verdict.IsValid,
		"corrected_data":      verdict.Corrected,
		"errors":              verdict.Errors,
		"warnings":            verdict.Warnings,
		"corrections_applied": verdict.Corrections,
	})
}

// bindExtractInput reads the multipart request shared by the extraction
// endpoints. Every part named "file" becomes one ordered page.
func bindExtractInput(c *gin.Context) (*service.ExtractInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("reading multipart form: %w", domain.ErrMissingFile)
	}

	headers := form.File["file"]
	if len(headers) == 0 {
		return nil, domain.ErrMissingFile
	}

	files := make([]service.UploadedFile, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("opening upload %q: %w", header.Filename, domain.ErrInvalidInput)
		}
		content, err := io.ReadAll(src)
		_ = src.Close()
		if err != nil {
			return nil, fmt.Errorf("reading upload %q: %w", header.Filename, domain.ErrInvalidInput)
		}
		files = append(files, service.UploadedFile{Filename: header.Filename, Content: content})
	}

	forceRetry := false
	if raw := c.PostForm("force_retry"); raw != "" {
		forceRetry, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("force_retry must be a boolean: %w", domain.ErrInvalidInput)
		}
	}

	return &service.ExtractInput{
		Files:      files,
		Buyer:      c.PostForm("buyer"),
		Template:   c.DefaultPostForm("template", defaultTemplate),
		ForceRetry: forceRetry,
	}, nil
}
