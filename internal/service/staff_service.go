package service

import (
	"context"
	"fmt"

	"resto-service/internal/models"
	"resto-service/internal/store"
	"resto-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// StaffService manages employee accounts. Admin-only operations; write
// failures always propagate to the caller.
type StaffService struct {
	repo   store.Repository
	logger *zap.Logger
}

func NewStaffService(repo store.Repository) *StaffService {
	return &StaffService{
		repo:   repo,
		logger: util.GetLogger(),
	}
}

// CreateEmployee registers a staff account. Role defaults to employee when
// not given; anything but admin or employee is refused.
func (s *StaffService) CreateEmployee(ctx context.Context, email, password string, role models.Role) (*models.UserProfile, error) {
	ctx, span := util.StartSpan(ctx, "StaffService.CreateEmployee")
	defer span.End()

	if role == "" {
		role = models.RoleEmployee
	}
	if role != models.RoleAdmin && role != models.RoleEmployee {
		return nil, fmt.Errorf("%w: unknown role %q", store.ErrRejected, role)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password too short", store.ErrRejected)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.UserProfile{
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
	}

	created, err := s.repo.CreateProfile(ctx, profile)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Employee account created",
		zap.String("profile_id", created.ID),
		zap.String("role", string(created.Role)))
	return created, nil
}

// ListEmployees returns all staff profiles.
func (s *StaffService) ListEmployees(ctx context.Context) ([]models.UserProfile, error) {
	return s.repo.ListProfiles(ctx)
}

// DeleteEmployee removes a staff account.
func (s *StaffService) DeleteEmployee(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "StaffService.DeleteEmployee")
	defer span.End()

	return s.repo.DeleteProfile(ctx, id)
}
