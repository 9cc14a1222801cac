package models

import "time"

const (
	RoleAdmin = "admin"
	RoleHR    = "hr"
	RoleUser  = "user"
)

type User struct {
	ID        string    `json:"id"`
	Fullname  string    `json:"fullname"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"` // admin | hr | user
	CreatedAt time.Time `json:"createdAt"`
}
