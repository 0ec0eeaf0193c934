package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yungbote/lendtrack-backend/internal/data/aggregates"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/services"
)

type fakeLoanService struct {
	lastCall   string
	lastStatus types.LoanStatus
	lastReason string
}

func (f *fakeLoanService) Request(context.Context, services.RequestLoanParams) (*types.Loan, error) {
	f.lastCall = "request"
	return &types.Loan{}, nil
}

func (f *fakeLoanService) Approve(_ context.Context, loanID uuid.UUID) (*types.Loan, error) {
	f.lastCall = "approve"
	return &types.Loan{ID: loanID, Status: types.LoanApproved}, nil
}

func (f *fakeLoanService) Reject(_ context.Context, loanID uuid.UUID) (*types.Loan, error) {
	f.lastCall = "reject"
	return &types.Loan{ID: loanID, Status: types.LoanRejected}, nil
}

func (f *fakeLoanService) Pay(context.Context, uuid.UUID, float64) (*aggregates.PaymentResult, error) {
	f.lastCall = "pay"
	return &aggregates.PaymentResult{}, nil
}

func (f *fakeLoanService) Get(_ context.Context, loanID uuid.UUID) (*types.Loan, error) {
	f.lastCall = "get"
	return &types.Loan{ID: loanID}, nil
}

func (f *fakeLoanService) ListLent(context.Context) ([]*types.Loan, error)     { return nil, nil }
func (f *fakeLoanService) ListBorrowed(context.Context) ([]*types.Loan, error) { return nil, nil }

func (f *fakeLoanService) OverrideStatus(_ context.Context, loanID uuid.UUID, to types.LoanStatus, reason string) (*types.Loan, error) {
	f.lastCall = "override"
	f.lastStatus = to
	f.lastReason = reason
	return &types.Loan{ID: loanID, Status: to}, nil
}

func setStatusRouter(t *testing.T, svc services.LoanService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/api/loans/:id/status", NewLoanHandler(svc).SetStatus)
	return r
}

func putStatus(r *gin.Engine, loanID uuid.UUID, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/loans/"+loanID.String()+"/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSetStatusMapsNamedTransitions(t *testing.T) {
	svc := &fakeLoanService{}
	r := setStatusRouter(t, svc)
	loanID := uuid.New()

	w := putStatus(r, loanID, `{"status":"APPROVED"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "approve", svc.lastCall)

	w = putStatus(r, loanID, `{"status":"REJECTED"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "reject", svc.lastCall)
}

func TestSetStatusFallsBackToOverride(t *testing.T) {
	svc := &fakeLoanService{}
	r := setStatusRouter(t, svc)
	loanID := uuid.New()

	w := putStatus(r, loanID, `{"status":"LATE","reason":"manual correction"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "override", svc.lastCall)
	require.Equal(t, types.LoanLate, svc.lastStatus)
	require.Equal(t, "manual correction", svc.lastReason)
}
