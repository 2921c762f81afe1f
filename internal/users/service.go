package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sportshoplabs/sportshop-backend/pkg/auth"
	"github.com/sportshoplabs/sportshop-backend/pkg/config"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/redis"
	"github.com/sportshoplabs/sportshop-backend/pkg/security"
)

type loginLimiter interface {
	IncrWithWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RegisterInput captures a new account submission.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// LoginResult is the issued token plus the authenticated account.
type LoginResult struct {
	AccessToken string
	User        *models.User
}

// Service exposes account registration, login, and profile operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password, clientIP string) (*LoginResult, error)
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo      Repository
	products  productLoader
	limiter   loginLimiter
	passwords config.PasswordConfig
	jwt       config.JWTConfig
	rate      config.AuthRateLimitConfig
	now       func() time.Time
}

// NewService builds a user service backed by the provided stack. The limiter
// may be nil, which disables login rate limiting (tests, local runs without
// redis).
func NewService(
	repo Repository,
	products productLoader,
	limiter loginLimiter,
	passwords config.PasswordConfig,
	jwtCfg config.JWTConfig,
	rate config.AuthRateLimitConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		repo:      repo,
		products:  products,
		limiter:   limiter,
		passwords: passwords,
		jwt:       jwtCfg,
		rate:      rate,
		now:       time.Now,
	}, nil
}

// Register creates the account and then assigns the default customers group
// as an explicit second step of the same flow.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.passwords)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        input.Phone,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	group, err := s.repo.GetGroupByName(ctx, models.DefaultGroupName)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AssignGroup(ctx, user.ID, group.ID); err != nil {
		return nil, err
	}
	user.Groups = append(user.Groups, *group)

	return user, nil
}

// Login verifies the credentials and issues an access token. Attempts are
// rate limited per email and per client IP.
func (s *service) Login(ctx context.Context, email, password, clientIP string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if err := s.checkRateLimit(ctx, email, clientIP); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := auth.IssueAccessToken(s.jwt, user.ID, user.IsStaff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issuing access token")
	}

	if err := s.repo.SetLastLogin(ctx, user.ID, s.now()); err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: token, User: user}, nil
}

func (s *service) checkRateLimit(ctx context.Context, email, clientIP string) error {
	if s.limiter == nil {
		return nil
	}

	count, err := s.limiter.IncrWithWindow(ctx, redis.RateLimitKey("login_email", email), s.rate.LoginWindow)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking login rate limit")
	}
	if count > int64(s.rate.LoginEmailLimit) {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts, try again later")
	}

	if clientIP == "" {
		return nil
	}
	count, err = s.limiter.IncrWithWindow(ctx, redis.RateLimitKey("login_ip", clientIP), s.rate.LoginWindow)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking login rate limit")
	}
	if count > int64(s.rate.LoginIPLimit) {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts, try again later")
	}
	return nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) AddFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.repo.AddFavorite(ctx, userID, productID)
}

func (s *service) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	return s.repo.RemoveFavorite(ctx, userID, productID)
}

func (s *service) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	return s.repo.ListFavorites(ctx, userID)
}
