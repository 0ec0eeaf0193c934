package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/http/response"
	"github.com/yungbote/lendtrack-backend/internal/services"
)

type LoanHandler struct {
	loanService services.LoanService
}

func NewLoanHandler(loanService services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

type requestLoanBody struct {
	LenderID          string  `json:"lender_id"`
	Amount            float64 `json:"amount" binding:"required"`
	Description       string  `json:"description" binding:"required"`
	PaymentType       string  `json:"payment_type"`
	InstallmentsCount int     `json:"installments_count"`
	DueDate           string  `json:"due_date" binding:"required"`
}

func (b requestLoanBody) toParams() (services.RequestLoanParams, error) {
	params := services.RequestLoanParams{
		Amount:            b.Amount,
		Description:       b.Description,
		PaymentType:       types.PaymentType(b.PaymentType),
		InstallmentsCount: b.InstallmentsCount,
	}
	if b.PaymentType == "" {
		params.PaymentType = types.PaymentLumpSum
	}
	if b.LenderID != "" {
		id, err := uuid.Parse(b.LenderID)
		if err != nil {
			return params, err
		}
		params.LenderID = id
	}
	due, err := time.Parse(time.RFC3339, b.DueDate)
	if err != nil {
		return params, err
	}
	params.DueDate = due
	return params, nil
}

// POST /api/loans/request
func (h *LoanHandler) Request(c *gin.Context) {
	var req requestLoanBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	params, err := req.toParams()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	l, err := h.loanService.Request(c.Request.Context(), params)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"loan": l})
}

// GET /api/loans/myloans
func (h *LoanHandler) MyLoans(c *gin.Context) {
	lent, err := h.loanService.ListLent(c.Request.Context())
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	borrowed, err := h.loanService.ListBorrowed(c.Request.Context())
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lent": lent, "borrowed": borrowed})
}

// GET /api/loans/:id
func (h *LoanHandler) Get(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	l, err := h.loanService.Get(c.Request.Context(), loanID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"loan": l})
}

// PUT /api/loans/:id/approve
func (h *LoanHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// PUT /api/loans/:id/reject
func (h *LoanHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *LoanHandler) decide(c *gin.Context, approve bool) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var l *types.Loan
	if approve {
		l, err = h.loanService.Approve(c.Request.Context(), loanID)
	} else {
		l, err = h.loanService.Reject(c.Request.Context(), loanID)
	}
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"loan": l})
}

// POST /api/loans/:id/payment
// body: { "amount": 25.0 }
func (h *LoanHandler) Pay(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.loanService.Pay(c.Request.Context(), loanID, req.Amount)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"loan": res.Loan, "payment": res.Payment})
}

// PUT /api/loans/:id/status
// body: { "status": "...", "reason": "..." }
// APPROVED and REJECTED map onto the lender's named transitions; any other
// target status is an audited override reserved for platform admins, and
// then the reason is required.
func (h *LoanHandler) SetStatus(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	var l *types.Loan
	switch types.LoanStatus(req.Status) {
	case types.LoanApproved:
		l, err = h.loanService.Approve(c.Request.Context(), loanID)
	case types.LoanRejected:
		l, err = h.loanService.Reject(c.Request.Context(), loanID)
	default:
		l, err = h.loanService.OverrideStatus(c.Request.Context(), loanID, types.LoanStatus(req.Status), req.Reason)
	}
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"loan": l})
}
