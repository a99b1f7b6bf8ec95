// internal/services/user_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kanistore/storefront/internal/models"
	"github.com/kanistore/storefront/internal/utils"
)

type UserService struct {
	users  UserStore
	images *ImageService
}

// UpdateUserRequest only touches the fields that are set.
type UpdateUserRequest struct {
	Name       string          `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	ProfilePic string          `json:"profilePic,omitempty" validate:"omitempty,max=2048"`
	PhoneNo    string          `json:"phoneNo,omitempty" validate:"omitempty,phone"`
	Address    *models.Address `json:"address,omitempty"`
}

func NewUserService(users UserStore, images *ImageService) *UserService {
	return &UserService{
		users:  users,
		images: images,
	}
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.ProfilePic = s.images.ResolveURL(user.ProfilePic)
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.ProfilePic != "" {
		user.ProfilePic = req.ProfilePic
	}
	if req.PhoneNo != "" {
		user.PhoneNo = req.PhoneNo
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	user.ProfilePic = s.images.ResolveURL(user.ProfilePic)
	return user, nil
}
