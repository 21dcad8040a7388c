package user

type UserResponse struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	LoginID   string `json:"login_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	IsAdmin   bool   `json:"is_admin"`
}
