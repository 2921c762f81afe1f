package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sportshoplabs/sportshop-backend/internal/repo"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
)

// Repository defines the persistence surface required by the user service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	AssignGroup(ctx context.Context, userID, groupID uuid.UUID) error
	SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds a GORM-backed user repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{Base: r.Base.WithConn(tx)}
}

func (r *gormRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.DB(ctx).Create(user).Error; err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).Preload("Groups").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	return &user, nil
}

func (r *gormRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).Preload("Groups").First(&user, "email = ?", strings.ToLower(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user by email")
	}
	return &user, nil
}

func (r *gormRepository) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	err := r.DB(ctx).First(&group, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading group")
	}
	return &group, nil
}

func (r *gormRepository) AssignGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	err := r.DB(ctx).
		Model(&models.User{ID: userID}).
		Association("Groups").
		Append(&models.Group{ID: groupID})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assigning group")
	}
	return nil
}

func (r *gormRepository) SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	err := r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", at).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating last login")
	}
	return nil
}

func (r *gormRepository) AddFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	err := r.DB(ctx).
		Model(&models.User{ID: userID}).
		Association("Favorites").
		Append(&models.Product{ID: productID})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding favorite")
	}
	return nil
}

func (r *gormRepository) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	err := r.DB(ctx).
		Model(&models.User{ID: userID}).
		Association("Favorites").
		Delete(&models.Product{ID: productID})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing favorite")
	}
	return nil
}

func (r *gormRepository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	err := r.DB(ctx).
		Model(&models.User{ID: userID}).
		Association("Favorites").
		Find(&out)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing favorites")
	}
	return out, nil
}
