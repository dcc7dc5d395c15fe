// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"user_backend/internal/feature/user/adapters"
	"user_backend/internal/feature/user/transport/handler"
	"user_backend/internal/feature/user/usecase"
	"user_backend/internal/platform/password"
)

// NewUserHandler wires repository → usecase → handler for the users resource.
func NewUserHandler(db *gorm.DB, bcryptCost int, log logrus.FieldLogger) *handler.UserHandler {
	repo := adapters.NewUserGorm(db)
	uc := usecase.NewUserUsecase(repo, password.NewBcryptHasher(bcryptCost))
	return handler.NewUserHandler(uc, log.WithField("component", "users"))
}
