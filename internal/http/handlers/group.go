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

type GroupHandler struct {
	groupService services.GroupService
	loanService  services.LoanService
}

func NewGroupHandler(groupService services.GroupService, loanService services.LoanService) *GroupHandler {
	return &GroupHandler{groupService: groupService, loanService: loanService}
}

// POST /api/groups
// body: { "name": "...", "description": "...", "member_ids": ["..."] }
func (h *GroupHandler) Create(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required"`
		Description string   `json:"description"`
		MemberIDs   []string `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	memberIDs := make([]uuid.UUID, 0, len(req.MemberIDs))
	for _, raw := range req.MemberIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		memberIDs = append(memberIDs, id)
	}
	grp, err := h.groupService.Create(c.Request.Context(), req.Name, req.Description, memberIDs)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"group": grp})
}

// GET /api/groups/mygroups
func (h *GroupHandler) ListMine(c *gin.Context) {
	groups, err := h.groupService.ListMine(c.Request.Context())
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"groups": groups})
}

// GET /api/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	grp, err := h.groupService.Get(c.Request.Context(), groupID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"group": grp})
}

// POST /api/groups/:id/members
// body: { "user_id": "..." }
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	grp, err := h.groupService.AddMember(c.Request.Context(), groupID, userID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"group": grp})
}

// DELETE /api/groups/:id/members/:userId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.groupService.RemoveMember(c.Request.Context(), groupID, userID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	payload := gin.H{"group_deleted": res.GroupDeleted}
	if res.Group != nil {
		payload["group"] = res.Group
	}
	if res.PromotedAdminID != nil {
		payload["promoted_admin_id"] = res.PromotedAdminID
	}
	response.RespondOK(c, payload)
}

// POST /api/groups/:id/loans
// body: same as a direct loan request, minus lender_id (the group admin lends)
func (h *GroupHandler) RequestLoan(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		Amount            float64 `json:"amount" binding:"required"`
		Description       string  `json:"description" binding:"required"`
		PaymentType       string  `json:"payment_type"`
		InstallmentsCount int     `json:"installments_count"`
		DueDate           string  `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	due, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	paymentType := types.PaymentType(req.PaymentType)
	if req.PaymentType == "" {
		paymentType = types.PaymentLumpSum
	}
	l, err := h.loanService.Request(c.Request.Context(), services.RequestLoanParams{
		Amount:            req.Amount,
		Description:       req.Description,
		PaymentType:       paymentType,
		InstallmentsCount: req.InstallmentsCount,
		DueDate:           due,
		GroupID:           &groupID,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"loan": l})
}

// POST /api/groups/:id/loans/:loanId/contribute
// body: { "amount": 10.0 }
func (h *GroupHandler) Contribute(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	loanID, err := uuid.Parse(c.Param("loanId"))
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
	res, err := h.groupService.Contribute(c.Request.Context(), groupID, loanID, req.Amount)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"contribution":  res.Contribution,
		"loan":          res.Loan,
		"auto_approved": res.AutoApproved,
	})
}

// GET /api/groups/:id/loans/:loanId/contributions
func (h *GroupHandler) ListContributions(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	loanID, err := uuid.Parse(c.Param("loanId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rows, err := h.groupService.ListContributions(c.Request.Context(), groupID, loanID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contributions": rows})
}
