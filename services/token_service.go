// Package services, mesajlaşma çekirdeğinin iş mantığı katmanıdır.
//
// Her servis bir interface + unexported struct çifti olarak tanımlanır.
// Handler'lar interface'e bağımlıdır, concrete implementasyona değil —
// testlerde mock, production'da gerçek implementasyon kullanılır.
package services

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
)

// TokenService, console SSO'sunun imzaladığı access token'ları doğrular.
//
// Bu çekirdek token ÜRETMEZ — login/register console'un işidir.
// Buradaki tek sorumluluk: HS256 imzasını paylaşılan secret ile doğrulayıp
// claim'leri çıkarmak. Middleware ve WS handler bunu kullanır.
type TokenService interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

type tokenService struct {
	jwtSecret []byte
}

// NewTokenService, constructor.
func NewTokenService(jwtSecret string) TokenService {
	return &tokenService{jwtSecret: []byte(jwtSecret)}
}

// ValidateAccessToken, JWT imzasını ve süresini doğrular.
//
// Signing method kontrolü önemli: alg=none veya RS256 gibi beklenmedik
// algoritmalarla imzalanmış token'lar reddedilir (algorithm confusion saldırısı).
func (s *tokenService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: token missing user id", pkg.ErrUnauthorized)
	}

	return claims, nil
}
