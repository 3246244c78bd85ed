package models

// LoginRequest is the panel login form, sent as JSON or as a form post
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResponse is returned to JSON login requests
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}
