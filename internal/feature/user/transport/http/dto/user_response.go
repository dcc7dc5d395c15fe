package dto

import (
	"time"

	"user_backend/internal/feature/user/domain/entity"
	"user_backend/internal/feature/user/usecase"
)

// UserResponse はユーザー詳細のレスポンスDTOです。パスワードは含みません。
type UserResponse struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreatedUserResponse は登録直後のレスポンスDTOです。
type CreatedUserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// PageResponse は一覧APIのページングレスポンスDTOです。
type PageResponse struct {
	CurrentPage int            `json:"current_page"`
	Data        []UserResponse `json:"data"`
	PerPage     int            `json:"per_page"`
	Total       int64          `json:"total"`
	LastPage    int            `json:"last_page"`
}

// FromView converts a usecase projection into a response DTO.
func FromView(v *usecase.UserView) UserResponse {
	return UserResponse{
		ID:              v.ID,
		Name:            v.Name,
		Email:           v.Email,
		EmailVerifiedAt: v.EmailVerifiedAt,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// FromCreated converts the registration projection into a response DTO.
func FromCreated(u *usecase.CreatedUser) CreatedUserResponse {
	return CreatedUserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// FromPage converts a page of entities into a response DTO.
// Password hashes are dropped here.
func FromPage(p entity.Page[entity.User]) PageResponse {
	items := make([]UserResponse, 0, len(p.Items))
	for _, u := range p.Items {
		items = append(items, UserResponse{
			ID:              u.ID,
			Name:            u.Name,
			Email:           u.Email,
			EmailVerifiedAt: u.EmailVerifiedAt,
			CreatedAt:       u.CreatedAt,
			UpdatedAt:       u.UpdatedAt,
		})
	}
	return PageResponse{
		CurrentPage: p.CurrentPage,
		Data:        items,
		PerPage:     p.PerPage,
		Total:       p.Total,
		LastPage:    p.LastPage(),
	}
}
