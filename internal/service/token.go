package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/school-auth/internal/models"
	"github.com/pribylovaa/school-auth/internal/pkg/log"
)

type tokenClaims struct {
	UserID string      `json:"uid"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue выпускает подписанный HS256 токен с exp = iat + TokenTTL.
// Набор отозванных токенов не затрагивается.
func (s *Service) Issue(ctx context.Context, subjectID uuid.UUID, displayName string, role models.Role) (*models.Token, error) {
	const op = "service.token.Issue"

	if !role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRole)
	}

	// JWT хранит время с точностью до секунды: усечём, чтобы ExpiresAt
	// в ответе совпадал с exp в токене.
	now := s.now().UTC().Truncate(time.Second)
	exp := now.Add(s.cfg.TokenTTL)

	claims := tokenClaims{
		UserID: subjectID.String(),
		Name:   displayName,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID.String(),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		log.From(ctx).Error("token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Token{
		Token: signed,
		Identity: models.Identity{
			SubjectID:   subjectID,
			DisplayName: displayName,
			Role:        role,
		},
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

// parseToken проверяет подпись, issuer/audience и срок действия.
func (s *Service) parseToken(raw string) (*models.Identity, error) {
	const op = "service.token.parseToken"

	token, err := jwt.ParseWithClaims(raw, &tokenClaims{},
		func(t *jwt.Token) (any, error) {
			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(s.cfg.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil || !claims.Role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return &models.Identity{
		SubjectID:   uid,
		DisplayName: claims.Name,
		Role:        claims.Role,
	}, nil
}
