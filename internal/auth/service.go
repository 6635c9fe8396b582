package auth

import (
	"context"
	"errors"

	"github.com/rowanleaf/service-accounts-go/internal/user"
	"github.com/rowanleaf/service-accounts-go/internal/user/entity"
)

// ErrInvalidCredentials is returned for both unknown email and wrong
// password, so callers cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is verified against when the email is unknown, so the miss path
// still pays for a bcrypt comparison. It is not a real credential and never
// matches anything we accept.
const dummyHash = "$2a$10$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service orchestrates registration and login: validates input, hashes
// passwords, writes through the repository and issues session tokens.
type Service struct {
	repo   user.Repository
	hasher user.PasswordHasher
	tokens *TokenService
}

func NewService(repo user.Repository, hasher user.PasswordHasher, tokens *TokenService) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// Register creates an account and returns it with a fresh session token.
// Validation failures surface as user.ErrInvalidInput before the store is
// touched; duplicate emails propagate as user.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, email, password string) (*entity.User, string, error) {
	email = user.NormalizeEmail(email)
	if err := user.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := user.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	u, err := s.repo.Create(ctx, email, hash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// burn a comparison so the miss path costs the same
			s.hasher.Verify(dummyHash, password)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Profile returns the account behind an authenticated identity.
func (s *Service) Profile(ctx context.Context, userID int64) (*entity.User, error) {
	return s.repo.GetByID(ctx, userID)
}
