package testutil

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			dbErr = errMissingDSN
			return
		}

		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			dbErr = err
			return
		}

		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			dbErr = err
			return
		}

		if err := autoMigrateAll(db); err != nil {
			dbErr = err
			return
		}
	})

	if errors.Is(dbErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	}
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// SeedUser inserts a user with a unique email into tx.
func SeedUser(tb testing.TB, tx *gorm.DB, name string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    uuid.NewString() + "@example.com",
		Password: "pw",
		Role:     types.RoleUser,
	}
	if err := tx.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedLoan inserts a PENDING lump-sum loan between the given parties.
func SeedLoan(tb testing.TB, tx *gorm.DB, lenderID, borrowerID uuid.UUID, amount float64) *types.Loan {
	tb.Helper()
	l := &types.Loan{
		ID:                uuid.New(),
		Amount:            amount,
		Description:       "test loan",
		LenderID:          lenderID,
		BorrowerID:        borrowerID,
		Status:            types.LoanPending,
		PaymentType:       types.PaymentLumpSum,
		InstallmentsCount: 1,
		DueDate:           time.Now().Add(30 * 24 * time.Hour),
	}
	if err := tx.Create(l).Error; err != nil {
		tb.Fatalf("seed loan: %v", err)
	}
	return l
}

// SeedGroup inserts a group with the admin enrolled as its first member.
func SeedGroup(tb testing.TB, tx *gorm.DB, adminID uuid.UUID, name string) *types.Group {
	tb.Helper()
	g := &types.Group{
		ID:      uuid.New(),
		Name:    name,
		AdminID: adminID,
	}
	if err := tx.Create(g).Error; err != nil {
		tb.Fatalf("seed group: %v", err)
	}
	if err := tx.Create(&types.GroupMember{
		GroupID: g.ID,
		UserID:  adminID,
		Role:    types.GroupRoleAdmin,
	}).Error; err != nil {
		tb.Fatalf("seed group admin member: %v", err)
	}
	return g
}

func autoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.Loan{},
		&types.Payment{},
		&types.Group{},
		&types.GroupMember{},
		&types.GroupLoanContribution{},
		&types.Notification{},
		&types.LoanStatusAudit{},
	)
}
