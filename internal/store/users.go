package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dessertbox/models"
)

// ErrInvalidCredentials reports an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("store: invalid credentials")

// UserStore persists catalog administrators.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) handle(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return s.db.WithContext(ctx), nil
}

// Create hashes the password and stores a new administrator.
func (s *UserStore) Create(ctx context.Context, email, name, password string) (*models.User, error) {
	tx, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashed),
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// FindByEmail looks a user up case-insensitively.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	tx, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}
	user := &models.User{}
	err = tx.Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Count reports how many administrators exist.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	tx, err := s.handle(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// Authenticate returns the user when the password matches its stored hash.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
