// Package user manages account registration and profile maintenance
// for investors and startups.
package user

import (
	"context"
	"errors"

	"fundmatch/internal/models"
	"fundmatch/internal/repositories"
	"fundmatch/internal/services/ledger"
	"fundmatch/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailRequired = errors.New("email is required")
	ErrEmailTaken    = errors.New("user with this email already exists")
	ErrInvalidRole   = errors.New("role must be INVESTOR or STARTUP")
)

// RegisterInput carries the fields accepted at signup.
type RegisterInput struct {
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Headline   string   `json:"headline"`
	Bio        string   `json:"bio"`
	Categories []string `json:"categories"`
}

// ProfileUpdate carries the mutable profile fields. Nil means leave the
// field untouched.
type ProfileUpdate struct {
	Name       *string   `json:"name"`
	Headline   *string   `json:"headline"`
	Bio        *string   `json:"bio"`
	Categories *[]string `json:"categories"`
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	UpdateProfile(id uint, update ProfileUpdate) (*models.User, error)
}

type service struct {
	repo   repositories.UserRepository
	ledger ledger.Service
}

func NewService(repo repositories.UserRepository, ledgerSvc ledger.Service) Service {
	return &service{
		repo:   repo,
		ledger: ledgerSvc,
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Email == "" {
		return nil, ErrEmailRequired
	}
	if input.Role != models.RoleInvestor && input.Role != models.RoleStartup {
		return nil, ErrInvalidRole
	}
	if len(input.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Email:      input.Email,
		Password:   string(hashedPassword),
		Name:       input.Name,
		Role:       input.Role,
		Headline:   input.Headline,
		Bio:        input.Bio,
		Categories: input.Categories,
	}

	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// Every account gets an empty wallet up front so quota and spend
	// paths never have to special-case a missing one.
	if _, err := s.ledger.CreateWallet(ctx, user.ID); err != nil {
		logger.Errorf("failed to provision wallet for user %d: %v", user.ID, err)
	}

	return user, nil
}

func (s *service) GetByID(id uint) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *service) UpdateProfile(id uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Headline != nil {
		user.Headline = *update.Headline
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Categories != nil {
		user.Categories = *update.Categories
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
