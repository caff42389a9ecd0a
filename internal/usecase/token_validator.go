package usecase

import (
	"smartpark/internal/domain/user"
	"smartpark/internal/pkg/jwt"
)

// TokenValidator turns a bearer token issued by the identity provider into the calling actor.
type TokenValidator interface {
	ValidateToken(tokenString string) (user.Actor, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (user.Actor, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return user.Actor{}, err
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return user.Actor{}, err
	}

	actor := user.Actor{ID: claims.UserID, Role: role}
	// a malformed email claim only costs the notifications, not the request
	if email, err := user.NewEmail(claims.Email); err == nil {
		actor.Email = email.Value()
	}
	return actor, nil
}
