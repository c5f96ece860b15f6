package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vrcosta/bank_ledger_app/internal/apperrors"
	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
	portssvc "github.com/vrcosta/bank_ledger_app/internal/core/ports/services"
	"github.com/vrcosta/bank_ledger_app/internal/dto"
	"github.com/vrcosta/bank_ledger_app/internal/middleware"
)

// ledgerHandler handles the balance-affecting operations and statements.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade

	// statementLoc is the fixed-offset zone used to interpret calendar-day
	// filter bounds and to render statement timestamps.
	statementLoc *time.Location
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade, statementLoc *time.Location) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls, statementLoc: statementLoc}
}

// registerLedgerRoutes registers the deposit, withdrawal, transfer, reversal
// and statement routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, statementLoc *time.Location) {
	h := newLedgerHandler(ledgerService, statementLoc)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/:code/deposit", h.deposit)
		accounts.POST("/:code/withdraw", h.withdraw)
		accounts.POST("/:code/transfer/:toCode", h.transfer)
		accounts.GET("/:code/statement", h.getStatement)
	}

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/:transactionID/reverse", h.reverseTransaction)
	}
}

// respondLedgerError maps engine errors onto HTTP statuses.
func respondLedgerError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrAlreadyReversed), errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *ledgerHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	newBalance, err := h.ledgerService.Deposit(c.Request.Context(), code, req.Amount)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to deposit")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{Code: code, NewBalance: newBalance})
}

func (h *ledgerHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	newBalance, err := h.ledgerService.Withdraw(c.Request.Context(), code, req.Amount)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to withdraw")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{Code: code, NewBalance: newBalance})
}

func (h *ledgerHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fromCode := c.Param("code")
	toCode := c.Param("toCode")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	newBalance, err := h.ledgerService.Transfer(c.Request.Context(), fromCode, toCode, req.Amount)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to transfer")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{Code: fromCode, NewBalance: newBalance})
}

func (h *ledgerHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	result, err := h.ledgerService.ReverseTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to reverse transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToReversalResponse(result))
}

func (h *ledgerHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	var params dto.StatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for GetStatement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	filter, err := h.buildStatementFilter(params)
	if err != nil {
		logger.Warn("Invalid statement filter", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	statement, err := h.ledgerService.GetAccountStatement(c.Request.Context(), code, filter)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to retrieve statement")
		return
	}

	c.JSON(http.StatusOK, dto.ToStatementResponse(statement, h.statementLoc))
}

// buildStatementFilter expands the inclusive calendar-day query bounds into
// UTC instants in the reference zone. endDate becomes the start of the
// following day, so the upper bound is exclusive.
func (h *ledgerHandler) buildStatementFilter(params dto.StatementParams) (domain.StatementFilter, error) {
	filter := domain.StatementFilter{
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}

	if params.Type != nil {
		txnType := domain.TransactionType(*params.Type)
		filter.Type = &txnType
	}

	if params.StartDate != nil {
		start, err := time.ParseInLocation("2006-01-02", *params.StartDate, h.statementLoc)
		if err != nil {
			return domain.StatementFilter{}, errors.New("invalid startDate, expected YYYY-MM-DD")
		}
		startUTC := start.UTC()
		filter.StartAt = &startUTC
	}

	if params.EndDate != nil {
		end, err := time.ParseInLocation("2006-01-02", *params.EndDate, h.statementLoc)
		if err != nil {
			return domain.StatementFilter{}, errors.New("invalid endDate, expected YYYY-MM-DD")
		}
		endUTC := end.AddDate(0, 0, 1).UTC()
		filter.EndAt = &endUTC
	}

	if filter.StartAt != nil && filter.EndAt != nil && !filter.StartAt.Before(*filter.EndAt) {
		return domain.StatementFilter{}, errors.New("startDate must not be after endDate")
	}

	return filter, nil
}
