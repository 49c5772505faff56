package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
	"github.com/finflow/accounting/internal/dto"
	"github.com/finflow/accounting/internal/handlers"
)

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) MarkOverdue(ctx context.Context, invoiceID string, asOf time.Time, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, asOf, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) SweepOverdue(ctx context.Context, asOf time.Time, userID string) (int, error) {
	args := m.Called(ctx, asOf, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockInvoiceService) Cancel(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

// --- Test Suite Setup ---
type InvoiceHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockInvoiceService *MockInvoiceService
}

func (suite *InvoiceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.mockInvoiceService = new(MockInvoiceService)

	handlers.RegisterRoutes(suite.router, &portssvc.ServiceContainer{
		Invoice: suite.mockInvoiceService,
	})
}

func (suite *InvoiceHandlerTestSuite) sampleInvoice(status domain.InvoiceStatus) *domain.Invoice {
	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Invoice{
		InvoiceID:     uuid.NewString(),
		InvoiceNumber: "INV-3001",
		CustomerID:    "cust-1",
		CurrencyCode:  "USD",
		LineItems: []domain.InvoiceLineItem{
			{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("100.00")},
		},
		Subtotal:  decimal.RequireFromString("100.00"),
		Tax:       decimal.Zero,
		Total:     decimal.RequireFromString("100.00"),
		Status:    status,
		IssueDate: issue,
		DueDate:   issue.AddDate(0, 0, 30),
	}
}

// --- Test Cases ---

func (suite *InvoiceHandlerTestSuite) TestCreateInvoice_Success() {
	expected := suite.sampleInvoice(domain.InvoicePending)
	userID := uuid.NewString()

	suite.mockInvoiceService.On("CreateInvoice",
		mock.Anything,
		mock.MatchedBy(func(req dto.CreateInvoiceRequest) bool {
			return req.InvoiceNumber == expected.InvoiceNumber && req.Total.Equal(expected.Total)
		}),
		userID,
	).Return(expected, nil).Once()

	body, _ := json.Marshal(dto.CreateInvoiceRequest{
		InvoiceNumber: expected.InvoiceNumber,
		CustomerID:    expected.CustomerID,
		CurrencyCode:  expected.CurrencyCode,
		LineItems: []dto.InvoiceLineItemRequest{
			{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("100.00")},
		},
		Subtotal:  expected.Subtotal,
		Tax:       expected.Tax,
		Total:     expected.Total,
		IssueDate: expected.IssueDate,
		DueDate:   expected.DueDate,
	})

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.InvoiceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.InvoiceID, resp.InvoiceID)
	suite.Equal(domain.InvoicePending, resp.Status)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestCreateInvoice_ValidationErrorReturns400() {
	userID := uuid.NewString()
	suite.mockInvoiceService.On("CreateInvoice", mock.Anything, mock.Anything, userID).
		Return(nil, fmt.Errorf("%w: total does not add up", apperrors.ErrValidation)).Once()

	invoice := suite.sampleInvoice(domain.InvoicePending)
	body, _ := json.Marshal(dto.CreateInvoiceRequest{
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerID:    invoice.CustomerID,
		CurrencyCode:  invoice.CurrencyCode,
		LineItems: []dto.InvoiceLineItemRequest{
			{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("100.00")},
		},
		Subtotal:  invoice.Subtotal,
		Tax:       invoice.Tax,
		Total:     decimal.RequireFromString("999.00"),
		IssueDate: invoice.IssueDate,
		DueDate:   invoice.DueDate,
	})

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *InvoiceHandlerTestSuite) TestCreateInvoice_MalformedBodyReturns400() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewReader([]byte(`{"invoiceNumber":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockInvoiceService.AssertNotCalled(suite.T(), "CreateInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceHandlerTestSuite) TestGetInvoice_NotFoundReturns404() {
	invoiceID := uuid.NewString()
	suite.mockInvoiceService.On("GetInvoice", mock.Anything, invoiceID).
		Return(nil, apperrors.ErrNotFound).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/invoices/"+invoiceID, nil)
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *InvoiceHandlerTestSuite) TestListInvoices_FiltersByStatus() {
	invoices := []domain.Invoice{*suite.sampleInvoice(domain.InvoiceOverdue)}
	suite.mockInvoiceService.On("ListInvoices",
		mock.Anything,
		mock.MatchedBy(func(p dto.ListInvoicesParams) bool {
			return p.Status != nil && *p.Status == domain.InvoiceOverdue && p.Limit == 10
		}),
	).Return(invoices, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/invoices?status=OVERDUE&limit=10", nil)
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.InvoiceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp, 1)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestCancelInvoice_InvalidTransitionReturns409() {
	invoiceID := uuid.NewString()
	suite.mockInvoiceService.On("Cancel", mock.Anything, invoiceID, "system").
		Return(nil, fmt.Errorf("%w: PAID invoices cannot be cancelled", apperrors.ErrInvalidTransition)).Once()

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/cancel", nil)
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *InvoiceHandlerTestSuite) TestSweepOverdue_ParsesAsOf() {
	asOf := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	suite.mockInvoiceService.On("SweepOverdue", mock.Anything, asOf, "system").
		Return(3, nil).Once()

	url := "/api/v1/invoices/sweep-overdue?asOf=" + asOf.Format(time.RFC3339)
	req, _ := http.NewRequest(http.MethodPost, url, nil)
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.OverdueSweepResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(3, resp.Transitions)
	suite.True(resp.AsOf.Equal(asOf))
}

func (suite *InvoiceHandlerTestSuite) TestSweepOverdue_RejectsBadAsOf() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/invoices/sweep-overdue?asOf=yesterday", nil)
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockInvoiceService.AssertNotCalled(suite.T(), "SweepOverdue", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceHandlerTestSuite))
}
