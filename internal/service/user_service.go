package service

import (
	"context"
	"errors"
	"time"

	"github.com/Rijass/Spotify-Stats/internal/domain"
	"github.com/Rijass/Spotify-Stats/internal/repository"
	"github.com/Rijass/Spotify-Stats/internal/secrets"
	"gorm.io/gorm"
)

type UserService struct {
	accounts repository.AccountRepository
	scheme   SessionScheme
	codec    *secrets.Codec
}

func NewUserService(accounts repository.AccountRepository, scheme SessionScheme, codec *secrets.Codec) *UserService {
	return &UserService{
		accounts: accounts,
		scheme:   scheme,
		codec:    codec,
	}
}

type CreateAccountInput struct {
	Username string
	Email    string
	Password string
}

type UpdateAccountInput struct {
	Username *string
	Email    *string
	Password *string
}

// AuthResult carries the raw session token. It is handed out exactly once;
// only its hash (or nothing, for the signed scheme) is persisted.
type AuthResult struct {
	Account      *domain.Account
	SessionToken string
}

func (s *UserService) CreateAccount(ctx context.Context, input CreateAccountInput) (*AuthResult, error) {
	if existing, err := s.accounts.GetByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	if existing, err := s.accounts.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	passwordHash, err := s.codec.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	token, err := s.scheme.IssueSession(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Account: account, SessionToken: token}, nil
}

// UpdateAccount applies only the fields that are set; a supplied password is
// re-hashed before storage.
func (s *UserService) UpdateAccount(ctx context.Context, id uint64, input UpdateAccountInput) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	if input.Username != nil && *input.Username != account.Username {
		if existing, err := s.accounts.GetByUsername(ctx, *input.Username); err == nil && existing != nil {
			return nil, domain.ErrUsernameTaken
		}
		account.Username = *input.Username
	}
	if input.Email != nil && *input.Email != account.Email {
		if existing, err := s.accounts.GetByEmail(ctx, *input.Email); err == nil && existing != nil {
			return nil, domain.ErrEmailTaken
		}
		account.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := s.codec.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	}
	account.UpdatedAt = time.Now()

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *UserService) DeleteAccount(ctx context.Context, id uint64) error {
	deleted, err := s.accounts.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Login accepts the username or the email as identifier. Unknown identifier
// and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	account, err := s.accounts.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.codec.PasswordMatches(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.scheme.IssueSession(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Account: account, SessionToken: token}, nil
}

func (s *UserService) IsSessionValid(ctx context.Context, rawToken string) bool {
	_, err := s.scheme.AccountIDForSession(ctx, rawToken)
	return err == nil
}

func (s *UserService) FindAccountBySessionToken(ctx context.Context, rawToken string) (*domain.Account, error) {
	accountID, err := s.scheme.AccountIDForSession(ctx, rawToken)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return account, nil
}

func (s *UserService) Logout(ctx context.Context, accountID uint64) error {
	return s.scheme.RevokeSession(ctx, accountID)
}

func (s *UserService) GetAccountByID(ctx context.Context, id uint64) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}
