package model

import "time"

// DefaultAdminRole is the only role this service knows about.
const DefaultAdminRole = "admin"

// Admin represents a row in the `admins` table.
//
// Fields:
//
//	ID           – UUID assigned at provisioning.
//	Username     – unique, case-sensitive login name.
//	Email        – unique, lower-cased address.
//	PasswordHash – bcrypt hash; never serialized.
//	Role         – role tag, "admin" unless provisioned otherwise.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the identity carried by a verified session token.
type Principal struct {
	AdminID  string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
