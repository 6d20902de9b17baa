package versions

import (
	"log"

	"gorm.io/gorm"
)

// Approval steps were added after the first release; older databases are
// missing the per-user approval role column.
func Migration_1_add_approval_roles(txn *gorm.DB) error {
	log.Println("adding approval_role column to table 'users'")

	type User struct {
		ApprovalRole *string `gorm:"size:50"`
	}

	if txn.Migrator().HasColumn(&User{}, "approval_role") {
		return nil
	}
	return txn.Migrator().AddColumn(&User{}, "ApprovalRole")
}

func Rollback_1_add_approval_roles(txn *gorm.DB) error {
	type User struct{}
	return txn.Migrator().DropColumn(&User{}, "approval_role")
}
