// Package notify persists in-app notifications and fans them out to devices.
// Dispatch happens after the owning transaction commits; failures here are
// logged and never bubble back into the write path.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	notificationrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/notification"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/user"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
	"gorm.io/datatypes"
)

type Dispatcher interface {
	LoanRequested(ctx context.Context, loan *types.Loan, borrower *types.User, groupMembers []types.GroupMember)
	LoanApproved(ctx context.Context, loan *types.Loan, approverID uuid.UUID)
	LoanRejected(ctx context.Context, loan *types.Loan)
	PaymentReceived(ctx context.Context, loan *types.Loan, payment *types.Payment, completed bool)
	LoanLate(ctx context.Context, loan *types.Loan)
	ContributionRecorded(ctx context.Context, loan *types.Loan, contribution *types.GroupLoanContribution, members []types.GroupMember)
	GroupInvited(ctx context.Context, group *types.Group, senderID uuid.UUID, memberIDs []uuid.UUID)
	AdminPromoted(ctx context.Context, group *types.Group, formerAdminID, newAdminID uuid.UUID)
}

type dispatcher struct {
	log       *logger.Logger
	notifRepo notificationrepo.NotificationRepo
	userRepo  user.UserRepo
	push      *PushSender
}

func NewDispatcher(log *logger.Logger, notifRepo notificationrepo.NotificationRepo, userRepo user.UserRepo, push *PushSender) Dispatcher {
	return &dispatcher{
		log:       log.With("component", "NotifyDispatcher"),
		notifRepo: notifRepo,
		userRepo:  userRepo,
		push:      push,
	}
}

func (d *dispatcher) LoanRequested(ctx context.Context, loan *types.Loan, borrower *types.User, groupMembers []types.GroupMember) {
	recipients := loanRequestRecipients(loan, groupMembers)
	content := fmt.Sprintf("%s requested a loan of %.2f", borrower.Name, loan.Amount)
	rows := make([]*types.Notification, 0, len(recipients))
	for _, rid := range recipients {
		rows = append(rows, &types.Notification{
			RecipientID:    rid,
			SenderID:       loan.BorrowerID,
			Type:           types.NotifLoanRequest,
			Content:        content,
			RelatedLoanID:  &loan.ID,
			RelatedGroupID: loan.GroupID,
			Data:           dataPayload(map[string]any{"loan_id": loan.ID, "amount": loan.Amount}),
		})
	}
	d.persistAndPush(ctx, rows, "New loan request")
}

func (d *dispatcher) LoanApproved(ctx context.Context, loan *types.Loan, approverID uuid.UUID) {
	d.persistAndPush(ctx, []*types.Notification{{
		RecipientID:    loan.BorrowerID,
		SenderID:       approverID,
		Type:           types.NotifLoanApproval,
		Content:        fmt.Sprintf("Your loan request of %.2f was approved", loan.Amount),
		RelatedLoanID:  &loan.ID,
		RelatedGroupID: loan.GroupID,
		Data:           dataPayload(map[string]any{"loan_id": loan.ID, "status": loan.Status}),
	}}, "Loan approved")
}

func (d *dispatcher) LoanRejected(ctx context.Context, loan *types.Loan) {
	d.persistAndPush(ctx, []*types.Notification{{
		RecipientID:    loan.BorrowerID,
		SenderID:       loan.LenderID,
		Type:           types.NotifLoanRejection,
		Content:        fmt.Sprintf("Your loan request of %.2f was rejected", loan.Amount),
		RelatedLoanID:  &loan.ID,
		RelatedGroupID: loan.GroupID,
		Data:           dataPayload(map[string]any{"loan_id": loan.ID, "status": loan.Status}),
	}}, "Loan rejected")
}

func (d *dispatcher) PaymentReceived(ctx context.Context, loan *types.Loan, payment *types.Payment, completed bool) {
	content := fmt.Sprintf("Payment of %.2f received on your loan", payment.Amount)
	if completed {
		content = fmt.Sprintf("Payment of %.2f received, the loan is fully repaid", payment.Amount)
	}
	d.persistAndPush(ctx, []*types.Notification{{
		RecipientID:   loan.LenderID,
		SenderID:      loan.BorrowerID,
		Type:          types.NotifPaymentReceived,
		Content:       content,
		RelatedLoanID: &loan.ID,
		Data: dataPayload(map[string]any{
			"loan_id": loan.ID, "payment_id": payment.ID,
			"amount": payment.Amount, "completed": completed,
		}),
	}}, "Payment received")
}

func (d *dispatcher) LoanLate(ctx context.Context, loan *types.Loan) {
	d.persistAndPush(ctx, []*types.Notification{{
		RecipientID:   loan.BorrowerID,
		SenderID:      loan.LenderID,
		Type:          types.NotifPaymentDue,
		Content:       fmt.Sprintf("Your loan of %.2f is past its due date", loan.Amount),
		RelatedLoanID: &loan.ID,
		Data:          dataPayload(map[string]any{"loan_id": loan.ID, "due_date": loan.DueDate}),
	}}, "Payment overdue")
}

// ContributionRecorded tells the rest of the group about a member's
// contribution. The contributor and the borrower are skipped: the borrower
// hears about the loan only through the LOAN_APPROVAL sent when a
// contribution auto-approves it.
func (d *dispatcher) ContributionRecorded(ctx context.Context, loan *types.Loan, contribution *types.GroupLoanContribution, members []types.GroupMember) {
	recipients := contributionRecipients(loan, contribution, members)
	content := fmt.Sprintf("%.2f was contributed toward the group loan", contribution.Amount)
	rows := make([]*types.Notification, 0, len(recipients))
	for _, rid := range recipients {
		rows = append(rows, &types.Notification{
			RecipientID:    rid,
			SenderID:       contribution.ContributorID,
			Type:           types.NotifPaymentReceived,
			Content:        content,
			RelatedLoanID:  &loan.ID,
			RelatedGroupID: loan.GroupID,
			Data: dataPayload(map[string]any{
				"loan_id": loan.ID, "contribution_id": contribution.ID, "amount": contribution.Amount,
			}),
		})
	}
	d.persistAndPush(ctx, rows, "Contribution received")
}

func (d *dispatcher) GroupInvited(ctx context.Context, group *types.Group, senderID uuid.UUID, memberIDs []uuid.UUID) {
	rows := make([]*types.Notification, 0, len(memberIDs))
	for _, rid := range dedupe(memberIDs) {
		if rid == senderID {
			continue
		}
		rows = append(rows, &types.Notification{
			RecipientID:    rid,
			SenderID:       senderID,
			Type:           types.NotifGroupInvitation,
			Content:        fmt.Sprintf("You were added to the group %q", group.Name),
			RelatedGroupID: &group.ID,
			Data:           dataPayload(map[string]any{"group_id": group.ID, "group_name": group.Name}),
		})
	}
	d.persistAndPush(ctx, rows, "Added to group")
}

// AdminPromoted notifies the member who inherited the group after the admin
// left.
func (d *dispatcher) AdminPromoted(ctx context.Context, group *types.Group, formerAdminID, newAdminID uuid.UUID) {
	d.persistAndPush(ctx, []*types.Notification{{
		RecipientID:    newAdminID,
		SenderID:       formerAdminID,
		Type:           types.NotifGroupInvitation,
		Content:        fmt.Sprintf("You are now the admin of the group %q", group.Name),
		RelatedGroupID: &group.ID,
		Data:           dataPayload(map[string]any{"group_id": group.ID, "group_name": group.Name}),
	}}, "Group administration")
}

// loanRequestRecipients derives who hears about a new loan request: the
// lender for a direct loan, every member except the borrower for a group
// loan.
func loanRequestRecipients(loan *types.Loan, members []types.GroupMember) []uuid.UUID {
	if loan.GroupID == nil {
		return []uuid.UUID{loan.LenderID}
	}
	out := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if m.UserID == loan.BorrowerID {
			continue
		}
		out = append(out, m.UserID)
	}
	return dedupe(out)
}

// contributionRecipients derives who hears about a group contribution: every
// member except the contributor and the borrower.
func contributionRecipients(loan *types.Loan, contribution *types.GroupLoanContribution, members []types.GroupMember) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if m.UserID == contribution.ContributorID || m.UserID == loan.BorrowerID {
			continue
		}
		out = append(out, m.UserID)
	}
	return dedupe(out)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func dataPayload(m map[string]any) datatypes.JSON {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func (d *dispatcher) persistAndPush(ctx context.Context, rows []*types.Notification, pushTitle string) {
	if len(rows) == 0 {
		return
	}
	created, err := d.notifRepo.Create(ctx, nil, rows)
	if err != nil {
		d.log.Error("failed to persist notifications", "count", len(rows), "error", err.Error())
		return
	}
	if d.push == nil {
		return
	}

	ids := make([]uuid.UUID, 0, len(created))
	for _, n := range created {
		ids = append(ids, n.RecipientID)
	}
	users, err := d.userRepo.GetByIDs(ctx, nil, dedupe(ids))
	if err != nil {
		d.log.Warn("failed to load push tokens", "error", err.Error())
		return
	}
	tokens := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		tokens[u.ID] = u.PushToken
	}
	for _, n := range created {
		d.push.Enqueue(PushJob{
			RecipientID: n.RecipientID,
			Token:       tokens[n.RecipientID],
			Title:       pushTitle,
			Body:        n.Content,
			Data: map[string]string{
				"notification_id": n.ID.String(),
				"type":            string(n.Type),
			},
		})
	}
}
