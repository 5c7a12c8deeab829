package repository

import (
	"time"

	"github.com/bargir/dispatch-gateway/internal/model"
)

type UserEntity struct {
	ID           int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Email        string    `db:"email"         gorm:"column:email;not null;unique"`
	PasswordHash string    `db:"password_hash" gorm:"column:password_hash;not null"`
	FullName     string    `db:"full_name"     gorm:"column:full_name;not null"`
	Phone        string    `db:"phone"         gorm:"column:phone"`
	Role         string    `db:"role"          gorm:"column:role;not null;index"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `db:"updated_at"    gorm:"column:updated_at;autoUpdateTime"`
}

func (UserEntity) TableName() string {
	return "users"
}

func toUserModel(e *UserEntity) (*model.User, error) {
	if e == nil {
		return nil, nil
	}
	role, err := model.ParseRole(e.Role)
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:           e.ID,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		FullName:     e.FullName,
		Phone:        e.Phone,
		Role:         role,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}, nil
}
