package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the ledger tables, indexes and constraints.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Customer{}, &Account{}, &Transaction{})
}
