package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords, so login failures don't reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, member *Staff, password string) error {
	if err := member.Validate(); err != nil {
		return err
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	member.PasswordHash = string(hash)
	member.Active = true
	return s.repo.Create(ctx, member)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, member *Staff) error {
	if err := member.Validate(); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, member.ID)
	if err != nil {
		return err
	}
	// Password changes go through SetPassword.
	member.PasswordHash = existing.PasswordHash
	return s.repo.Update(ctx, member)
}

func (s *Service) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	member.PasswordHash = string(hash)
	return s.repo.Update(ctx, member)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *Service) List(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error) {
	return s.repo.List(ctx, role, limit, offset)
}

// Authenticate verifies credentials and returns the staff member. Inactive
// accounts cannot log in.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Staff, error) {
	member, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !member.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return member, nil
}
