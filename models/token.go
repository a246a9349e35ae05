package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, doğrulanmış bir access token'ın payload'ı.
// Token'lar console'un SSO servisi tarafından HS256 ile imzalanır;
// bu çekirdek sadece imzayı doğrular ve claim'leri okur.
//
// jwt.RegisteredClaims embed edilir — exp/iat gibi standart alanların
// doğrulamasını jwt kütüphanesi otomatik yapar.
type TokenClaims struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}
