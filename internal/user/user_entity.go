package user

import "time"

// AuthAdmin is the auth level that marks a company administrator.
const AuthAdmin = 0

type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	CompanyID int64  `gorm:"column:company_id;not null;index:idx_users_company"`
	LoginID   string `gorm:"column:login_id;type:varchar(100);not null;uniqueIndex:idx_users_login"`
	Password  string `gorm:"column:password;type:varchar(100);not null"`

	FirstName string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null"`
	Auth      int    `gorm:"column:auth;not null;default:1"`

	ReferenceDate *time.Time `gorm:"column:reference_date"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

// FullName renders the display name the way the clients show it, family name
// first.
func (u User) FullName() string {
	return u.LastName + " " + u.FirstName
}

func (u User) IsAdmin() bool {
	return u.Auth == AuthAdmin
}
