package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"linkup/internal/domain"
	"linkup/internal/dto"
	"linkup/internal/store"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenConfig struct {
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	SigningKey []byte // HS256 secret
}

type AccessClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	SID                  string `json:"sid"`
	jwt.RegisteredClaims        // jti == refresh id
}

type TokenService struct {
	cfg   TokenConfig
	store *store.Store
	now   func() time.Time
}

func NewTokenService(cfg TokenConfig, st *store.Store) *TokenService {
	return &TokenService{cfg: cfg, store: st, now: time.Now}
}

// Issue creates a session row and returns access+refresh tokens for it.
func (t *TokenService) Issue(ctx context.Context, user *domain.User, ip, ua string) (*dto.TokenResponse, error) {
	now := t.now().UTC()

	sess := &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		RefreshID: uuid.New(),
		ExpiresAt: now.Add(t.cfg.RefreshTTL),
		CreatedAt: now,
		IP:        ip,
		UserAgent: ua,
	}
	if err := t.store.Sessions().Create(ctx, sess); err != nil {
		return nil, err
	}

	access, err := t.signAccess(user.ID, sess, now)
	if err != nil {
		return nil, err
	}
	refresh, err := t.signRefresh(user.ID, sess, now)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(t.cfg.AccessTTL.Seconds()),
		UserID:       user.ID.String(),
	}, nil
}

// Refresh validates the refresh JWT, checks session state and returns a new
// access token for the same session.
func (t *TokenService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	now := t.now().UTC()

	claims, err := t.parseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	rid, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	sess, err := t.store.Sessions().GetByRefreshID(ctx, rid)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if sess.RevokedAt != nil || now.After(sess.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	access, err := t.signAccess(sess.UserID, sess, now)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(t.cfg.AccessTTL.Seconds()),
		UserID:       sess.UserID.String(),
	}, nil
}

// Revoke ends the session behind a refresh token. Revoking an unknown or
// already-revoked token is not an error.
func (t *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := t.parseRefresh(refreshToken)
	if err != nil {
		return ErrInvalidToken
	}
	rid, err := uuid.Parse(claims.ID)
	if err != nil {
		return ErrInvalidToken
	}
	sess, err := t.store.Sessions().GetByRefreshID(ctx, rid)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return t.store.Sessions().Revoke(ctx, sess.ID, t.now().UTC())
}

// VerifyAccess resolves the identity carried by an access token. This is the
// server-side counterpart of the client's identity-change callback: every
// request and websocket attach re-derives the current identity from it.
func (t *TokenService) VerifyAccess(tokenStr string) (domain.UserID, error) {
	var claims AccessClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, t.keyFunc,
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil || !tok.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return uid, nil
}

func (t *TokenService) signAccess(userID domain.UserID, sess *domain.Session, now time.Time) (string, error) {
	claims := AccessClaims{
		SID: sess.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
}

func (t *TokenService) signRefresh(userID domain.UserID, sess *domain.Session, now time.Time) (string, error) {
	claims := RefreshClaims{
		SID: sess.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.RefreshTTL)),
			ID:        sess.RefreshID.String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
}

func (t *TokenService) parseRefresh(tokenStr string) (*RefreshClaims, error) {
	var claims RefreshClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, t.keyFunc,
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (t *TokenService) keyFunc(_ *jwt.Token) (any, error) {
	return t.cfg.SigningKey, nil
}
