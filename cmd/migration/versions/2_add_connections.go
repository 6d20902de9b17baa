package versions

import (
	"log"

	"gorm.io/gorm"

	"flowforge/schema"
)

// Step connections were originally embedded in the step config json; they
// now live in their own table so the canvas can load edges independently.
func Migration_2_add_connections(txn *gorm.DB) error {
	log.Println("creating table 'connections'")

	if txn.Migrator().HasTable(&schema.Connection{}) {
		return nil
	}
	return txn.Migrator().CreateTable(&schema.Connection{})
}

func Rollback_2_add_connections(txn *gorm.DB) error {
	return txn.Migrator().DropTable(&schema.Connection{})
}
