package tenant

import "gorm.io/gorm"

// Scope restricts a query to one company via the users join every workflow
// table reaches its tenant through.
func Scope(companyID int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.company_id = ?", companyID)
	}
}
