package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user_backend/internal/feature/user/domain/entity"
)

const (
	// DefaultPerPage is the page size used when the caller does not pass one.
	DefaultPerPage = 15
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// All returns every user ordered by id.
	All(ctx context.Context) ([]entity.User, error)

	// Paginate returns one page of users ordered by id. page and perPage are >= 1.
	Paginate(ctx context.Context, page, perPage int) (entity.Page[entity.User], error)

	// FindByID returns ErrUserNotFound when the user does not exist.
	FindByID(ctx context.Context, id uint) (entity.User, error)

	// FindByEmail returns ErrUserNotFound when the user does not exist.
	FindByEmail(ctx context.Context, email string) (entity.User, error)

	// Create inserts the user and returns the persisted record.
	// It returns ErrEmailAlreadyExists on a uniqueness conflict.
	Create(ctx context.Context, user entity.User) (entity.User, error)

	// Update applies the non-nil fields. It reports false when the user does not exist.
	Update(ctx context.Context, id uint, changes entity.UserChanges) (bool, error)

	// Delete removes the user. It reports false when the user does not exist.
	Delete(ctx context.Context, id uint) (bool, error)
}

// PasswordHasher turns a plaintext password into an irreversible, salted hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UserView is the safe read projection of a user.
type UserView struct {
	ID              uint
	Name            string
	Email           string
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreatedUser is the projection returned right after registration.
type CreatedUser struct {
	ID        uint
	Name      string
	Email     string
	CreatedAt time.Time
}

// CreateUserInput carries the accepted fields of a create request.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput carries the fields of an update request. Nil means "not sent".
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UserUsecase implements the user use cases on top of a UserRepository.
type UserUsecase struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewUserUsecase creates a new UserUsecase.
func NewUserUsecase(users UserRepository, hasher PasswordHasher) *UserUsecase {
	return &UserUsecase{users: users, hasher: hasher}
}

// GetAllUsers returns every user as stored.
func (u *UserUsecase) GetAllUsers(ctx context.Context) ([]entity.User, error) {
	return u.users.All(ctx)
}

// GetPaginatedUsers returns one page of users.
// Zero values select the first page and DefaultPerPage.
func (u *UserUsecase) GetPaginatedUsers(ctx context.Context, page, perPage int) (entity.Page[entity.User], error) {
	if page < 0 || perPage < 0 {
		return entity.Page[entity.User]{}, ErrInvalidPagination
	}
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	return u.users.Paginate(ctx, page, perPage)
}

// GetUserByID returns the projection of a single user or ErrUserNotFound.
func (u *UserUsecase) GetUserByID(ctx context.Context, id uint) (*UserView, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(user), nil
}

// CreateUser hashes the password and persists a new user.
func (u *UserUsecase) CreateUser(ctx context.Context, in CreateUserInput) (*CreatedUser, error) {
	user := entity.User{Name: in.Name, Email: in.Email}
	if in.Password != "" {
		hashed, err := u.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
	}

	created, err := u.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return &CreatedUser{
		ID:        created.ID,
		Name:      created.Name,
		Email:     created.Email,
		CreatedAt: created.CreatedAt,
	}, nil
}

// UpdateUser applies a partial update and returns the refreshed projection.
// The password is re-hashed only when it is part of the input.
func (u *UserUsecase) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*UserView, error) {
	changes := entity.UserChanges{Name: in.Name, Email: in.Email}
	if in.Password != nil {
		hashed, err := u.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		changes.Password = &hashed
	}

	ok, err := u.users.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.GetUserByID(ctx, id)
}

// DeleteUser removes the user and reports whether it existed.
func (u *UserUsecase) DeleteUser(ctx context.Context, id uint) (bool, error) {
	return u.users.Delete(ctx, id)
}

// UserExistsByEmail reports whether any user owns the email address.
func (u *UserUsecase) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EmailTakenByOther reports whether a user other than id owns the email address.
func (u *UserUsecase) EmailTakenByOther(ctx context.Context, email string, id uint) (bool, error) {
	owner, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return owner.ID != id, nil
}

func toView(user entity.User) *UserView {
	return &UserView{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		EmailVerifiedAt: user.EmailVerifiedAt,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}
