// Package adapters はuserフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"user_backend/internal/feature/user/domain/entity"
	"user_backend/internal/feature/user/usecase"
	"user_backend/internal/platform/db"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
// MySQL / PostgreSQL / SQLite のいずれのダイアレクタでも動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// All は全ユーザーをID昇順で返します。
func (r *userGorm) All(ctx context.Context) ([]entity.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

// Paginate はID昇順で1ページ分のユーザーと総件数を返します。
func (r *userGorm) Paginate(ctx context.Context, page, perPage int) (entity.Page[entity.User], error) {
	if page < 1 || perPage < 1 {
		return entity.Page[entity.User]{}, usecase.ErrInvalidPagination
	}
	// (page-1)*perPage がintに収まらないページは存在しない
	if page-1 > math.MaxInt/perPage {
		return entity.Page[entity.User]{}, usecase.ErrInvalidPagination
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&total).Error; err != nil {
		return entity.Page[entity.User]{}, err
	}

	var models []UserModel
	offset := (page - 1) * perPage
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(perPage).
		Find(&models).Error; err != nil {
		return entity.Page[entity.User]{}, err
	}

	return entity.Page[entity.User]{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		Items:       toEntities(models),
	}, nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.User{}, usecase.ErrUserNotFound
		}
		return entity.User{}, err
	}
	return m.ToEntity(), nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.User{}, usecase.ErrUserNotFound
		}
		return entity.User{}, err
	}
	return m.ToEntity(), nil
}

// Create はユーザーをデータベースに追加し、採番済みのレコードを返します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u entity.User) (entity.User, error) {
	m := UserModelFromEntity(u)
	m.ID = 0 // IDは常にDB側で採番
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return entity.User{}, usecase.ErrEmailAlreadyExists
		}
		return entity.User{}, err
	}
	return m.ToEntity(), nil
}

// Update は指定されたフィールドのみを1トランザクション内で更新します。
// ユーザーが存在しない場合は (false, nil) を返し、行は作成しません。
func (r *userGorm) Update(ctx context.Context, id uint, changes entity.UserChanges) (bool, error) {
	updated := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m UserModel
		if err := tx.Select("id").Where("id = ?", id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		updated = true

		if changes.IsEmpty() {
			return nil
		}

		// mapで渡してゼロ値（空文字）も更新対象にする
		values := map[string]any{}
		if changes.Name != nil {
			values["name"] = *changes.Name
		}
		if changes.Email != nil {
			values["email"] = *changes.Email
		}
		if changes.Password != nil {
			values["password"] = *changes.Password
		}
		return tx.Model(&UserModel{}).Where("id = ?", id).Updates(values).Error
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return false, usecase.ErrEmailAlreadyExists
		}
		return false, fmt.Errorf("update user %d: %w", id, err)
	}
	return updated, nil
}

// Delete はユーザーを物理削除します。
// ユーザーが存在しない場合は (false, nil) を返します。
func (r *userGorm) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func toEntities(models []UserModel) []entity.User {
	users := make([]entity.User, 0, len(models))
	for i := range models {
		users = append(users, models[i].ToEntity())
	}
	return users
}
