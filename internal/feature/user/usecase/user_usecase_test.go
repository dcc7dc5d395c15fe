package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"user_backend/internal/feature/user/domain/entity"
	"user_backend/internal/feature/user/usecase"
	"user_backend/internal/platform/password"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
type mockUserRepository struct {
	AllFunc         func(ctx context.Context) ([]entity.User, error)
	PaginateFunc    func(ctx context.Context, page, perPage int) (entity.Page[entity.User], error)
	FindByIDFunc    func(ctx context.Context, id uint) (entity.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (entity.User, error)
	CreateFunc      func(ctx context.Context, user entity.User) (entity.User, error)
	UpdateFunc      func(ctx context.Context, id uint, changes entity.UserChanges) (bool, error)
	DeleteFunc      func(ctx context.Context, id uint) (bool, error)
}

func (m *mockUserRepository) All(ctx context.Context) ([]entity.User, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) Paginate(ctx context.Context, page, perPage int) (entity.Page[entity.User], error) {
	if m.PaginateFunc != nil {
		return m.PaginateFunc(ctx, page, perPage)
	}
	return entity.Page[entity.User]{CurrentPage: page, PerPage: perPage}, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default: user not found
	return entity.User{}, usecase.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default: user not found
	return entity.User{}, usecase.ErrUserNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, user entity.User) (entity.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = 1
	return user, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id uint, changes entity.UserChanges) (bool, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, changes)
	}
	return false, nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uint) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return false, nil
}

// stubHasher prefixes the plaintext so tests can see that hashing happened.
type stubHasher struct {
	err error
}

func (h stubHasher) Hash(plain string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plain, nil
}

func strPtr(s string) *string { return &s }

func TestNewUserUsecase(t *testing.T) {
	t.Parallel()

	uc := usecase.NewUserUsecase(&mockUserRepository{}, stubHasher{})

	assert.NotNil(t, uc, "usecase should not be nil")
}

func TestUserUsecase_GetAllUsers(t *testing.T) {
	t.Parallel()

	users := []entity.User{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	repo := &mockUserRepository{
		AllFunc: func(ctx context.Context) ([]entity.User, error) { return users, nil },
	}

	got, err := usecase.NewUserUsecase(repo, stubHasher{}).GetAllUsers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, users, got)
}

func TestUserUsecase_GetPaginatedUsers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		page            int
		perPage         int
		expectedPage    int
		expectedPerPage int
		wantErr         error
	}{
		{name: "defaults when unspecified", page: 0, perPage: 0, expectedPage: 1, expectedPerPage: usecase.DefaultPerPage},
		{name: "explicit values pass through", page: 3, perPage: 5, expectedPage: 3, expectedPerPage: 5},
		{name: "negative per page is rejected", page: 1, perPage: -1, wantErr: usecase.ErrInvalidPagination},
		{name: "negative page is rejected", page: -2, perPage: 10, wantErr: usecase.ErrInvalidPagination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			repo := &mockUserRepository{
				PaginateFunc: func(ctx context.Context, page, perPage int) (entity.Page[entity.User], error) {
					called = true
					assert.Equal(t, tt.expectedPage, page)
					assert.Equal(t, tt.expectedPerPage, perPage)
					return entity.Page[entity.User]{CurrentPage: page, PerPage: perPage}, nil
				},
			}

			got, err := usecase.NewUserUsecase(repo, stubHasher{}).GetPaginatedUsers(context.Background(), tt.page, tt.perPage)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, called, "repository should not be called")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedPage, got.CurrentPage)
			assert.Equal(t, tt.expectedPerPage, got.PerPage)
		})
	}
}

func TestUserUsecase_GetUserByID(t *testing.T) {
	t.Parallel()

	verified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stored := entity.User{
		ID:              7,
		Name:            "John Doe",
		Email:           "john@example.com",
		Password:        "hashed:secret",
		EmailVerifiedAt: &verified,
		CreatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}

	t.Run("success: returns safe projection", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uint) (entity.User, error) {
				assert.Equal(t, uint(7), id)
				return stored, nil
			},
		}

		got, err := usecase.NewUserUsecase(repo, stubHasher{}).GetUserByID(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, &usecase.UserView{
			ID:              7,
			Name:            "John Doe",
			Email:           "john@example.com",
			EmailVerifiedAt: &verified,
			CreatedAt:       stored.CreatedAt,
			UpdatedAt:       stored.UpdatedAt,
		}, got)
	})

	t.Run("success: repeated reads return equal projections", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uint) (entity.User, error) { return stored, nil },
		}
		uc := usecase.NewUserUsecase(repo, stubHasher{})

		first, err := uc.GetUserByID(context.Background(), 7)
		require.NoError(t, err)
		second, err := uc.GetUserByID(context.Background(), 7)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("failure: user not found", func(t *testing.T) {
		t.Parallel()

		got, err := usecase.NewUserUsecase(&mockUserRepository{}, stubHasher{}).GetUserByID(context.Background(), 99)

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
		assert.Nil(t, got)
	})
}

func TestUserUsecase_CreateUser(t *testing.T) {
	t.Parallel()

	t.Run("success: password is hashed and projection omits it", func(t *testing.T) {
		t.Parallel()

		createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user entity.User) (entity.User, error) {
				assert.Equal(t, "hashed:password123", user.Password, "password should be hashed before persisting")
				user.ID = 42
				user.CreatedAt = createdAt
				user.UpdatedAt = createdAt
				return user, nil
			},
		}

		got, err := usecase.NewUserUsecase(repo, stubHasher{}).CreateUser(context.Background(), usecase.CreateUserInput{
			Name:     "John Doe",
			Email:    "john@example.com",
			Password: "password123",
		})

		require.NoError(t, err)
		assert.Equal(t, &usecase.CreatedUser{ID: 42, Name: "John Doe", Email: "john@example.com", CreatedAt: createdAt}, got)
	})

	t.Run("success: stored value is a verifiable bcrypt hash", func(t *testing.T) {
		t.Parallel()

		var stored string
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user entity.User) (entity.User, error) {
				stored = user.Password
				user.ID = 1
				return user, nil
			},
		}

		_, err := usecase.NewUserUsecase(repo, password.NewBcryptHasher(bcrypt.MinCost)).CreateUser(context.Background(), usecase.CreateUserInput{
			Name:     "John Doe",
			Email:    "john@example.com",
			Password: "password123",
		})

		require.NoError(t, err)
		assert.NotEqual(t, "password123", stored)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("password123")))
	})

	t.Run("failure: hasher error", func(t *testing.T) {
		t.Parallel()

		hashErr := errors.New("entropy exhausted")
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user entity.User) (entity.User, error) {
				t.Error("repository should not be called")
				return user, nil
			},
		}

		got, err := usecase.NewUserUsecase(repo, stubHasher{err: hashErr}).CreateUser(context.Background(), usecase.CreateUserInput{
			Name: "x", Email: "x@example.com", Password: "password123",
		})

		assert.ErrorIs(t, err, hashErr)
		assert.Nil(t, got)
	})

	t.Run("failure: repository conflict propagates", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user entity.User) (entity.User, error) {
				return entity.User{}, usecase.ErrEmailAlreadyExists
			},
		}

		got, err := usecase.NewUserUsecase(repo, stubHasher{}).CreateUser(context.Background(), usecase.CreateUserInput{
			Name: "x", Email: "dup@example.com", Password: "password123",
		})

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
		assert.Nil(t, got)
	})
}

func TestUserUsecase_UpdateUser(t *testing.T) {
	t.Parallel()

	t.Run("success: only provided fields are forwarded", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepository{
			UpdateFunc: func(ctx context.Context, id uint, changes entity.UserChanges) (bool, error) {
				assert.Equal(t, uint(3), id)
				require.NotNil(t, changes.Name)
				assert.Equal(t, "Renamed", *changes.Name)
				assert.Nil(t, changes.Email)
				assert.Nil(t, changes.Password)
				return true, nil
			},
			FindByIDFunc: func(ctx context.Context, id uint) (entity.User, error) {
				return entity.User{ID: id, Name: "Renamed", Email: "keep@example.com", Password: "hashed:old"}, nil
			},
		}

		got, err := usecase.NewUserUsecase(repo, stubHasher{}).UpdateUser(context.Background(), 3, usecase.UpdateUserInput{Name: strPtr("Renamed")})

		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, "keep@example.com", got.Email)
	})

	t.Run("success: password is hashed when present", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepository{
			UpdateFunc: func(ctx context.Context, id uint, changes entity.UserChanges) (bool, error) {
				require.NotNil(t, changes.Password)
				assert.Equal(t, "hashed:newpassword", *changes.Password)
				return true, nil
			},
			FindByIDFunc: func(ctx context.Context, id uint) (entity.User, error) {
				return entity.User{ID: id}, nil
			},
		}

		_, err := usecase.NewUserUsecase(repo, stubHasher{}).UpdateUser(context.Background(), 1, usecase.UpdateUserInput{Password: strPtr("newpassword")})

		require.NoError(t, err)
	})

	t.Run("failure: missing user is not upserted", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepository{
			UpdateFunc: func(ctx context.Context, id uint, changes entity.UserChanges) (bool, error) {
				return false, nil
			},
			CreateFunc: func(ctx context.Context, user entity.User) (entity.User, error) {
				t.Error("create must not be called on update")
				return user, nil
			},
		}

		got, err := usecase.NewUserUsecase(repo, stubHasher{}).UpdateUser(context.Background(), 404, usecase.UpdateUserInput{Name: strPtr("x")})

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
		assert.Nil(t, got)
	})

	t.Run("failure: repository error propagates", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("database connection failed")
		repo := &mockUserRepository{
			UpdateFunc: func(ctx context.Context, id uint, changes entity.UserChanges) (bool, error) {
				return false, dbErr
			},
		}

		_, err := usecase.NewUserUsecase(repo, stubHasher{}).UpdateUser(context.Background(), 1, usecase.UpdateUserInput{})

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestUserUsecase_DeleteUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   bool
		err      error
		expected bool
	}{
		{name: "success: existing user deleted", result: true, expected: true},
		{name: "success: missing user reports false", result: false, expected: false},
		{name: "failure: repository error", err: errors.New("boom"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockUserRepository{
				DeleteFunc: func(ctx context.Context, id uint) (bool, error) { return tt.result, tt.err },
			}

			got, err := usecase.NewUserUsecase(repo, stubHasher{}).DeleteUser(context.Background(), 1)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUserUsecase_UserExistsByEmail(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("database connection failed")
	tests := []struct {
		name     string
		find     func(ctx context.Context, email string) (entity.User, error)
		expected bool
		wantErr  error
	}{
		{
			name: "exists",
			find: func(ctx context.Context, email string) (entity.User, error) {
				return entity.User{ID: 1, Email: email}, nil
			},
			expected: true,
		},
		{
			name: "does not exist",
			find: func(ctx context.Context, email string) (entity.User, error) {
				return entity.User{}, usecase.ErrUserNotFound
			},
			expected: false,
		},
		{
			name:    "repository error",
			find:    func(ctx context.Context, email string) (entity.User, error) { return entity.User{}, dbErr },
			wantErr: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockUserRepository{FindByEmailFunc: tt.find}
			got, err := usecase.NewUserUsecase(repo, stubHasher{}).UserExistsByEmail(context.Background(), "a@x.com")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUserUsecase_EmailTakenByOther(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (entity.User, error) {
			if email == "b@x.com" {
				return entity.User{ID: 2, Email: email}, nil
			}
			return entity.User{}, usecase.ErrUserNotFound
		},
	}
	uc := usecase.NewUserUsecase(repo, stubHasher{})

	taken, err := uc.EmailTakenByOther(context.Background(), "b@x.com", 1)
	require.NoError(t, err)
	assert.True(t, taken, "email owned by another user")

	taken, err = uc.EmailTakenByOther(context.Background(), "b@x.com", 2)
	require.NoError(t, err)
	assert.False(t, taken, "own email is not a conflict")

	taken, err = uc.EmailTakenByOther(context.Background(), "free@x.com", 1)
	require.NoError(t, err)
	assert.False(t, taken)
}
