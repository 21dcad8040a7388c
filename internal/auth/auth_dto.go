package auth

type LoginRequest struct {
	LoginID  string `json:"loginId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	UserID    int64  `json:"userId"`
	CompanyID int64  `json:"companyId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IsAdmin   bool   `json:"isAdmin"`
}
