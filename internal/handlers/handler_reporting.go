package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finflow/accounting/internal/apperrors"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
	"github.com/finflow/accounting/internal/dto"
	"github.com/finflow/accounting/internal/middleware"
)

// reportingHandler handles HTTP requests for financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// registerReportingRoutes registers routes related to reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := &reportingHandler{reportingService: reportingService}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/balance-sheet", h.balanceSheet)
		reports.GET("/profit-and-loss", h.profitAndLoss)
	}
}

// reportError maps report generation failures to HTTP statuses. An integrity failure
// is the store's fault, not the caller's, so it surfaces as a 500.
func reportError(c *gin.Context, logger *slog.Logger, err error, what string) {
	if errors.Is(err, apperrors.ErrLedgerIntegrity) {
		logger.Error("Ledger integrity violation detected", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Error("Failed to generate report", slog.String("report", what), slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate " + what})
}

func parseAsOf(c *gin.Context) (time.Time, bool) {
	asOf := time.Now().UTC()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected RFC3339"})
			return time.Time{}, false
		}
		asOf = parsed
	}
	return asOf, true
}

func (h *reportingHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	rows, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		reportError(c, logger, err, "trial balance")
		return
	}

	c.JSON(http.StatusOK, dto.NewTrialBalanceResponse(asOf, rows))
}

func (h *reportingHandler) balanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		reportError(c, logger, err, "balance sheet")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) profitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from := time.Time{}
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected RFC3339"})
			return
		}
		from = parsed
	}
	to := time.Now().UTC()
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected RFC3339"})
			return
		}
		to = parsed
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), from, to)
	if err != nil {
		reportError(c, logger, err, "profit and loss")
		return
	}

	c.JSON(http.StatusOK, report)
}
