package model

import (
	"fmt"
	"time"
)

// Role is the closed set of identities the gateway knows about. It is
// decided once at the storage boundary; nothing deeper in the core branches
// on raw strings.
type Role string

const (
	RoleDispatcher Role = "dispatcher"
	RoleDriver     Role = "driver"
	RoleCustomer   Role = "customer"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDispatcher, RoleDriver, RoleCustomer:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Principal is the authenticated identity resolved from a credential or a
// session token.
type Principal struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u *User) Principal() Principal {
	return Principal{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	}
}
