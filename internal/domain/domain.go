// Package domain holds the persistent types and the pure lending rules:
// the loan status graph, access predicates, and ledger arithmetic. Nothing
// in this package touches the database or the transport.
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	Role      UserRole  `gorm:"not null;default:USER;column:role" json:"role"`
	PushToken string    `gorm:"column:push_token" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }

type LoanStatus string

const (
	LoanPending   LoanStatus = "PENDING"
	LoanApproved  LoanStatus = "APPROVED"
	LoanRejected  LoanStatus = "REJECTED"
	LoanActive    LoanStatus = "ACTIVE"
	LoanCompleted LoanStatus = "COMPLETED"
	LoanLate      LoanStatus = "LATE"
)

type PaymentType string

const (
	PaymentLumpSum      PaymentType = "LUMP_SUM"
	PaymentInstallments PaymentType = "INSTALLMENTS"
)

type Loan struct {
	ID                uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Amount            float64     `gorm:"not null" json:"amount"`
	Description       string      `gorm:"not null" json:"description"`
	LenderID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"lender_id"`
	BorrowerID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"borrower_id"`
	Status            LoanStatus  `gorm:"not null;default:PENDING;index" json:"status"`
	PaymentType       PaymentType `gorm:"not null;default:LUMP_SUM" json:"payment_type"`
	InstallmentsCount int         `gorm:"not null;default:1" json:"installments_count"`
	InstallmentsPaid  int         `gorm:"not null;default:0" json:"installments_paid"`
	DueDate           time.Time   `gorm:"not null" json:"due_date"`
	GroupID           *uuid.UUID  `gorm:"type:uuid;index" json:"group_id,omitempty"`

	Payments []Payment `gorm:"foreignKey:LoanID" json:"payments"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Loan) TableName() string { return "loan" }

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
)

// Payment is an append-only ledger entry. Rows are never edited or removed
// once written.
type Payment struct {
	ID     uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LoanID uuid.UUID     `gorm:"type:uuid;not null;index" json:"loan_id"`
	Amount float64       `gorm:"not null" json:"amount"`
	Status PaymentStatus `gorm:"not null;default:PENDING" json:"status"`
	PaidAt time.Time     `gorm:"not null;default:now()" json:"paid_at"`
}

func (Payment) TableName() string { return "payment" }

type GroupRole string

const (
	GroupRoleAdmin  GroupRole = "ADMIN"
	GroupRoleMember GroupRole = "MEMBER"
)

type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	AdminID     uuid.UUID `gorm:"type:uuid;not null;index" json:"admin_id"`

	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Group) TableName() string { return "group" }

type GroupMember struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GroupID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member" json:"group_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member" json:"user_id"`
	Role    GroupRole `gorm:"not null;default:MEMBER" json:"role"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (GroupMember) TableName() string { return "group_member" }

type ContributionStatus string

const (
	ContributionPending   ContributionStatus = "PENDING"
	ContributionConfirmed ContributionStatus = "CONFIRMED"
)

// GroupLoanContribution tracks a member's funding toward a group loan. It is
// a side ledger: contribution amounts never count toward the loan's paid
// total.
type GroupLoanContribution struct {
	ID            uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LoanID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"loan_id"`
	ContributorID uuid.UUID          `gorm:"type:uuid;not null;index" json:"contributor_id"`
	Amount        float64            `gorm:"not null" json:"amount"`
	Status        ContributionStatus `gorm:"not null;default:PENDING" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (GroupLoanContribution) TableName() string { return "group_loan_contribution" }

type NotificationType string

const (
	NotifLoanRequest     NotificationType = "LOAN_REQUEST"
	NotifLoanApproval    NotificationType = "LOAN_APPROVAL"
	NotifLoanRejection   NotificationType = "LOAN_REJECTION"
	NotifPaymentDue      NotificationType = "PAYMENT_DUE"
	NotifPaymentReceived NotificationType = "PAYMENT_RECEIVED"
	NotifGroupInvitation NotificationType = "GROUP_INVITATION"
)

// Notification is an immutable fact; only the Read flag is ever flipped, and
// only by its recipient.
type Notification struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RecipientID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"recipient_id"`
	SenderID       uuid.UUID        `gorm:"type:uuid;not null" json:"sender_id"`
	Type           NotificationType `gorm:"not null" json:"type"`
	Content        string           `gorm:"not null" json:"content"`
	RelatedLoanID  *uuid.UUID       `gorm:"type:uuid" json:"related_loan_id,omitempty"`
	RelatedGroupID *uuid.UUID       `gorm:"type:uuid" json:"related_group_id,omitempty"`
	Data           datatypes.JSON   `gorm:"type:jsonb" json:"data,omitempty"`
	Read           bool             `gorm:"not null;default:false" json:"read"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }

// LoanStatusAudit records status writes that did not come from a named
// transition: admin overrides and the due-date watcher.
type LoanStatusAudit struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LoanID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"loan_id"`
	ActorID    *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	FromStatus LoanStatus `gorm:"not null" json:"from_status"`
	ToStatus   LoanStatus `gorm:"not null" json:"to_status"`
	Reason     string     `gorm:"not null" json:"reason"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (LoanStatusAudit) TableName() string { return "loan_status_audit" }
