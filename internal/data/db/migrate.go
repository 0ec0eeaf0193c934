package db

import (
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"gorm.io/gorm"
)

func (s *Service) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}

func AutoMigrateAll(db *gorm.DB) error {
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
