package services

import (
	"fmt"

	"gudang/internal/models"
	"gudang/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles business logic for user profiles.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetProfile retrieves a user by ID.
func (s *UserService) GetProfile(userID string) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile applies the non-empty fields of updates to the stored user.
// A changed email or phone must not collide with another account.
func (s *UserService) UpdateProfile(userID string, updates *models.User) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if updates.Name != "" {
		user.Name = updates.Name
	}
	if updates.Email != "" && updates.Email != user.Email {
		if existing, err := s.userRepo.GetByEmail(updates.Email); err == nil && existing != nil {
			return nil, fmt.Errorf("email '%s' already registered", updates.Email)
		}
		user.Email = updates.Email
	}
	if updates.Phone != "" && updates.Phone != user.Phone {
		if existing, err := s.userRepo.GetByPhone(updates.Phone); err == nil && existing != nil {
			return nil, fmt.Errorf("phone '%s' already registered", updates.Phone)
		}
		user.Phone = updates.Phone
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteProfile removes the user's account.
func (s *UserService) DeleteProfile(userID string) error {
	return s.userRepo.Delete(userID)
}

// ChangePassword verifies the current password before storing a hash of the
// new one.
func (s *UserService) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}
