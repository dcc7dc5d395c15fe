package adapters

import (
	"time"

	"user_backend/internal/feature/user/domain/entity"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID              uint       `gorm:"primaryKey;autoIncrement"`
	Name            string     `gorm:"size:255;not null"`
	Email           string     `gorm:"size:255;not null;uniqueIndex"`
	Password        string     `gorm:"size:255;not null"` // bcrypt hash
	EmailVerifiedAt *time.Time `gorm:"column:email_verified_at"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() entity.User {
	return entity.User{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Password:        m.Password,
		EmailVerifiedAt: m.EmailVerifiedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u entity.User) *UserModel {
	return &UserModel{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Password:        u.Password,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// Models lists the models owned by this package, for AutoMigrate.
func Models() []any {
	return []any{&UserModel{}}
}
