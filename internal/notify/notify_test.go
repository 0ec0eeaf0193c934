package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yungbote/lendtrack-backend/internal/clients/fcm"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
	"gorm.io/gorm"
)

func TestLoanRequestRecipients(t *testing.T) {
	lender := uuid.New()
	borrower := uuid.New()

	direct := &types.Loan{LenderID: lender, BorrowerID: borrower}
	require.Equal(t, []uuid.UUID{lender}, loanRequestRecipients(direct, nil))

	groupID := uuid.New()
	other := uuid.New()
	members := []types.GroupMember{
		{GroupID: groupID, UserID: lender},
		{GroupID: groupID, UserID: borrower},
		{GroupID: groupID, UserID: other},
		{GroupID: groupID, UserID: other}, // duplicate rows collapse
	}
	grouped := &types.Loan{LenderID: lender, BorrowerID: borrower, GroupID: &groupID}

	got := loanRequestRecipients(grouped, members)
	require.Equal(t, []uuid.UUID{lender, other}, got)
	require.NotContains(t, got, borrower)
}

func TestContributionRecipients(t *testing.T) {
	groupID := uuid.New()
	admin, borrower, contributor, other := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	members := []types.GroupMember{
		{GroupID: groupID, UserID: admin},
		{GroupID: groupID, UserID: borrower},
		{GroupID: groupID, UserID: contributor},
		{GroupID: groupID, UserID: other},
	}
	loan := &types.Loan{LenderID: admin, BorrowerID: borrower, GroupID: &groupID}
	contribution := &types.GroupLoanContribution{ContributorID: contributor, Amount: 20}

	got := contributionRecipients(loan, contribution, members)
	require.ElementsMatch(t, []uuid.UUID{admin, other}, got)
	require.NotContains(t, got, borrower)
	require.NotContains(t, got, contributor)
}

func TestDedupe(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	require.Equal(t, []uuid.UUID{a, b}, dedupe([]uuid.UUID{a, b, a, b, a}))
	require.Empty(t, dedupe(nil))
}

type fakeNotifRepo struct {
	mu   sync.Mutex
	rows []*types.Notification
}

func (f *fakeNotifRepo) Create(_ context.Context, _ *gorm.DB, notifications []*types.Notification) ([]*types.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range notifications {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		f.rows = append(f.rows, n)
	}
	return notifications, nil
}

func (f *fakeNotifRepo) GetByID(context.Context, *gorm.DB, uuid.UUID) (*types.Notification, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNotifRepo) ListByRecipient(context.Context, *gorm.DB, uuid.UUID) ([]*types.Notification, error) {
	return nil, nil
}

func (f *fakeNotifRepo) MarkRead(context.Context, *gorm.DB, uuid.UUID) error { return nil }

func (f *fakeNotifRepo) Delete(context.Context, *gorm.DB, uuid.UUID) error { return nil }

func TestContributionRecordedNotifiesOtherMembers(t *testing.T) {
	repo := &fakeNotifRepo{}
	d := NewDispatcher(testLogger(t), repo, nil, nil)

	groupID := uuid.New()
	admin, borrower, contributor, other := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	members := []types.GroupMember{
		{GroupID: groupID, UserID: admin, Role: types.GroupRoleAdmin},
		{GroupID: groupID, UserID: borrower},
		{GroupID: groupID, UserID: contributor},
		{GroupID: groupID, UserID: other},
	}
	loan := &types.Loan{ID: uuid.New(), LenderID: admin, BorrowerID: borrower, GroupID: &groupID}
	contribution := &types.GroupLoanContribution{ID: uuid.New(), LoanID: loan.ID, ContributorID: contributor, Amount: 20}

	d.ContributionRecorded(context.Background(), loan, contribution, members)

	require.Len(t, repo.rows, 2)
	recipients := make([]uuid.UUID, 0, len(repo.rows))
	for _, n := range repo.rows {
		require.Equal(t, types.NotifPaymentReceived, n.Type)
		require.Equal(t, contributor, n.SenderID)
		recipients = append(recipients, n.RecipientID)
	}
	require.ElementsMatch(t, []uuid.UUID{admin, other}, recipients)
}

func TestAdminPromotedNotifiesNewAdmin(t *testing.T) {
	repo := &fakeNotifRepo{}
	d := NewDispatcher(testLogger(t), repo, nil, nil)

	former, promoted := uuid.New(), uuid.New()
	group := &types.Group{ID: uuid.New(), Name: "Road trip", AdminID: promoted}

	d.AdminPromoted(context.Background(), group, former, promoted)

	require.Len(t, repo.rows, 1)
	n := repo.rows[0]
	require.Equal(t, promoted, n.RecipientID)
	require.Equal(t, former, n.SenderID)
	require.Equal(t, types.NotifGroupInvitation, n.Type)
	require.Equal(t, &group.ID, n.RelatedGroupID)
}

type fakePushClient struct {
	mu    sync.Mutex
	sent  []fcm.SendRequest
	fail  bool
	calls chan struct{}
}

func (f *fakePushClient) Send(_ context.Context, req fcm.SendRequest) (*fcm.SendResponse, error) {
	f.mu.Lock()
	f.sent = append(f.sent, req)
	f.mu.Unlock()
	if f.calls != nil {
		f.calls <- struct{}{}
	}
	if f.fail {
		return nil, errors.New("fcm http 500: upstream down")
	}
	return &fcm.SendResponse{Success: 1}, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return log
}

func TestPushSenderDelivers(t *testing.T) {
	client := &fakePushClient{calls: make(chan struct{}, 4)}
	sender := NewPushSender(testLogger(t), client, PushConfig{QueueSize: 4, Workers: 1, Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = sender.Start(ctx)
		close(done)
	}()

	sender.Enqueue(PushJob{RecipientID: uuid.New(), Token: "tok-1", Title: "Loan approved", Body: "..."})
	select {
	case <-client.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("push never delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sender did not stop")
	}

	require.Len(t, client.sent, 1)
	require.Equal(t, "tok-1", client.sent[0].Token)
}

func TestPushSenderSwallowsFailures(t *testing.T) {
	client := &fakePushClient{fail: true, calls: make(chan struct{}, 4)}
	sender := NewPushSender(testLogger(t), client, PushConfig{QueueSize: 4, Workers: 2, Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sender.Start(ctx) }()

	// Failed deliveries must not stop later ones.
	sender.Enqueue(PushJob{RecipientID: uuid.New(), Token: "tok-1", Title: "a"})
	sender.Enqueue(PushJob{RecipientID: uuid.New(), Token: "tok-2", Title: "b"})

	for i := 0; i < 2; i++ {
		select {
		case <-client.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("delivery %d never attempted", i+1)
		}
	}
}

func TestPushSenderSkipsBlankTokens(t *testing.T) {
	client := &fakePushClient{}
	sender := NewPushSender(testLogger(t), client, PushConfig{QueueSize: 1, Workers: 1})

	sender.Enqueue(PushJob{RecipientID: uuid.New(), Token: "   "})
	require.Empty(t, client.sent)
	// Nothing was queued either, so the buffer is still free.
	sender.Enqueue(PushJob{RecipientID: uuid.New(), Token: ""})
	require.Empty(t, client.sent)
}
