package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kardemumma/kardemumma/internal/models"
)

// Login verifies credentials and issues a token. Inactive admins and unknown
// emails both come back as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Admin, string, error) {
	admin, err := s.Store.GetAdminByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !admin.IsActive || !checkPassword(admin.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.Store.TouchAdminLogin(admin.ID, now); err != nil {
		return nil, "", err
	}
	admin.LastLoginAt = &now

	token, err := s.Auth.Issue(ctx, admin)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return admin, token, nil
}

func (s *Service) ListAdmins() ([]models.Admin, error) {
	return s.Store.ListAdmins()
}

func (s *Service) CreateAdmin(name, email, password string, isActive bool) (*models.Admin, error) {
	if password == "" {
		return nil, invalidField("password", "is required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsActive:     isActive,
	}
	if err := asValidationError(admin.Validate()); err != nil {
		return nil, err
	}

	if err := s.Store.CreateAdmin(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// AdminPatch is a partial admin update; a non-empty password re-hashes.
type AdminPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsActive *bool   `json:"isActive"`
}

func (s *Service) UpdateAdmin(id int64, patch AdminPatch) (*models.Admin, error) {
	admin, err := s.Store.GetAdmin(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		admin.Name = *patch.Name
	}
	if patch.Email != nil {
		admin.Email = *patch.Email
	}
	if patch.IsActive != nil {
		admin.IsActive = *patch.IsActive
	}
	if patch.Password != nil && *patch.Password != "" {
		hash, err := HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = hash
	}
	if err := asValidationError(admin.Validate()); err != nil {
		return nil, err
	}

	if err := s.Store.UpdateAdmin(admin); err != nil {
		return nil, err
	}
	return admin, nil
}
