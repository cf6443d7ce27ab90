package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"linkup/internal/domain"
	"linkup/internal/dto"
	"linkup/internal/observability/metrics"
	"linkup/internal/store"
)

const minPasswordLen = 6

type AuthService struct {
	store  *store.Store
	hasher *PasswordHasher
	tokens *TokenService
	now    func() time.Time
}

func NewAuthService(st *store.Store, hasher *PasswordHasher, tokens *TokenService) *AuthService {
	return &AuthService{store: st, hasher: hasher, tokens: tokens, now: time.Now}
}

// Register creates the account: profile row plus argon2id credential in one
// transaction. The lowered search key is derived here, at write time.
func (a *AuthService) Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error) {
	result := "success"
	defer func() { metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc() }()

	name := strings.TrimSpace(r.Name)
	email := strings.TrimSpace(r.Email)
	if name == "" || email == "" {
		result = "invalid"
		return nil, domain.ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		result = "invalid"
		return nil, domain.ErrInvalidEmail
	}
	if len(r.Password) < minPasswordLen {
		result = "invalid"
		return nil, domain.ErrWeakPassword
	}

	var out dto.RegisterResponse
	err := a.store.WithTx(ctx, func(tx *store.Store) error {
		now := a.now().UTC()

		u := &domain.User{
			ID:          uuid.New(),
			Email:       email,
			DateOfBirth: r.DateOfBirth,
			Gender:      r.Gender,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		u.SetName(name)
		if err := tx.Users().Create(ctx, u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrEmailInUse
			}
			return err
		}

		hash, salt, paramsJSON, algo, ver, err := a.hasher.Hash(r.Password)
		if err != nil {
			return err
		}
		cred := &domain.PasswordCredential{
			ID:          uuid.New(),
			UserID:      u.ID,
			Algo:        algo,
			Hash:        hash,
			Salt:        salt,
			ParamsJSON:  paramsJSON,
			PasswordVer: ver,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Credentials().UpsertPassword(ctx, cred); err != nil {
			return err
		}

		out = dto.RegisterResponse{UserID: u.ID.String()}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailInUse) {
			result = "email_in_use"
		} else if result == "success" {
			result = "failure"
		}
		return nil, err
	}

	slog.Info("registered user", "user_id", out.UserID)
	return &out, nil
}

func (a *AuthService) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.TokenResponse, error) {
	result := "success"
	defer func() { metrics.AuthLoginsTotal.WithLabelValues(result).Inc() }()

	if r.Email == "" || r.Password == "" {
		result = "invalid"
		return nil, domain.ErrInvalidCredentials
	}

	var tokens *dto.TokenResponse
	err := a.store.WithTx(ctx, func(tx *store.Store) error {
		user, err := tx.Users().GetByEmail(ctx, r.Email)
		if err != nil {
			return domain.ErrInvalidCredentials // don't leak which field failed
		}
		if user.IsDisabled {
			return domain.ErrUserDisabled
		}

		cred, err := tx.Credentials().GetPasswordByUserID(ctx, user.ID)
		if err != nil {
			return domain.ErrInvalidCredentials
		}

		rehashNeeded, ok := a.hasher.Verify(r.Password, cred)
		if !ok {
			return domain.ErrInvalidCredentials
		}

		// Transparent rehash on policy upgrade.
		if rehashNeeded {
			newHash, newSalt, newParams, algo, ver, err := a.hasher.Hash(r.Password)
			if err != nil {
				return err
			}
			cred.Algo = algo
			cred.Hash = newHash
			cred.Salt = newSalt
			cred.ParamsJSON = newParams
			cred.PasswordVer = ver
			if err := tx.Credentials().UpsertPassword(ctx, cred); err != nil {
				return err
			}
		}

		tr, err := a.tokens.Issue(ctx, user, ip, ua)
		if err != nil {
			return err
		}
		tokens = tr
		return nil
	})
	if err != nil {
		result = "failure"
		return nil, err
	}
	return tokens, nil
}

// Logout revokes the session behind the refresh token (signOut).
func (a *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return a.tokens.Revoke(ctx, refreshToken)
}
