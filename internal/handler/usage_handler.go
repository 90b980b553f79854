package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ledgerlens/internal/service"
	"ledgerlens/internal/usageexport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UsageHandler serves token usage and cost reporting endpoints.
type UsageHandler struct {
	usageService service.UsageService
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(usageService service.UsageService) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// GetCosts handles GET /api/v1/usage/costs
// @Summary Token usage and cost report
// @Description Usage records with aggregate stats and a per-provider breakdown. Stats honor the date window; records honor every filter.
// @Tags usage
// @Produce json
// @Param limit query int false "Max records to return (max 1000)" default(100)
// @Param offset query int false "Records to skip" default(0)
// @Param provider query string false "Filter records by provider (vllm, openrouter)"
// @Param buyer query string false "Filter records by buyer"
// @Param start_date query string false "Window start (YYYY-MM-DD or RFC3339)"
// @Param end_date query string false "Window end (YYYY-MM-DD or RFC3339)"
// @Success 200 {object} Response{data=service.CostReport} "Usage report"
// @Failure 400 {object} ErrorResponseBody "Invalid date format"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security ApiKeyAuth
// @Router /usage/costs [get]
func (h *UsageHandler) GetCosts(c *gin.Context) {
	q, err := bindCostQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	report, err := h.usageService.QueryCosts(c.Request.Context(), q)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}

// Export handles GET /api/v1/usage/export
// @Summary Export usage records
// @Description Download usage records as a CSV (default) or XLSX file
// @Tags usage
// @Produce text/csv
// @Param format query string false "Export format: csv or xlsx" default(csv)
// @Param provider query string false "Filter records by provider"
// @Param buyer query string false "Filter records by buyer"
// @Param start_date query string false "Window start (YYYY-MM-DD or RFC3339)"
// @Param end_date query string false "Window end (YYYY-MM-DD or RFC3339)"
// @Success 200 {file} file "Usage export"
// @Failure 400 {object} ErrorResponseBody "Invalid date or format"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security ApiKeyAuth
// @Router /usage/export [get]
func (h *UsageHandler) Export(c *gin.Context) {
	q, err := bindCostQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "format must be csv or xlsx")
		return
	}

	records, err := h.usageService.ListForExport(c.Request.Context(), q)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := usageexport.BuildFilename("token_usage", format)

	if format == "xlsx" {
		data, err := usageexport.WriteXLSX(records)
		if err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, xlsxContentType, data)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(usageexport.BOM); err != nil {
		return
	}
	w := usageexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteRecords(records); err != nil {
		return
	}
	w.Flush()
}

// bindCostQuery extracts the shared usage filters from query params.
func bindCostQuery(c *gin.Context) (service.CostQuery, error) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	q := service.CostQuery{
		Provider: c.Query("provider"),
		Buyer:    c.Query("buyer"),
		Limit:    limit,
		Offset:   offset,
	}

	var err error
	if raw := c.Query("start_date"); raw != "" {
		q.StartDate, err = parseDate(raw)
		if err != nil {
			return q, fmt.Errorf("invalid start_date %q: use YYYY-MM-DD or RFC3339", raw)
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		q.EndDate, err = parseDate(raw)
		if err != nil {
			return q, fmt.Errorf("invalid end_date %q: use YYYY-MM-DD or RFC3339", raw)
		}
	}
	return q, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
