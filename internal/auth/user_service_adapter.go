package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UserServiceAdapter implements the reservations UserDirectory interface using
// the auth repository. The adapter prevents import cycles while letting the
// reservation flow resolve account holder details.
type UserServiceAdapter struct {
	repo Repository
}

// NewUserServiceAdapter creates a new user service adapter
func NewUserServiceAdapter(repo Repository) *UserServiceAdapter {
	return &UserServiceAdapter{
		repo: repo,
	}
}

// GetUserByID fetches user details by ID and returns email, firstName, lastName
func (usa *UserServiceAdapter) GetUserByID(ctx context.Context, userID uuid.UUID) (email, firstName, lastName string, err error) {
	user, err := usa.repo.GetUserByID(ctx, userID.String())
	if err != nil {
		return "", "", "", fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}

	return user.Email, user.FirstName, user.LastName, nil
}
