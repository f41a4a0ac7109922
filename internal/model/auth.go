package model

import (
	"time"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// TokenStatus is the result of validate-token.
type TokenStatus struct {
	Valid     bool      `json:"valid"`
	UserID    int64     `json:"user_id"`
	FirmID    int64     `json:"firm_id"`
	Role      Role      `json:"role"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}
