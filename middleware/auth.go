// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır.
// Middleware kendi işini yapar (ör: token doğrula), sonra next'i çağırır.
// Eğer hata varsa next'i çağırmaz → request burada durur.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akinalp/opsdesk/handlers"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/services"
)

// AuthMiddleware, JWT token doğrulama middleware'ı.
//
// Token'lar console SSO'su tarafından üretilir; burada sadece imza + süre
// doğrulanır. Kullanıcı DB kontrolü yoktur — kimliğin sahibi dış sistemdir.
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenService: tokenService}
}

// Require, JWT token zorunlu kılan middleware.
// Token yoksa veya geçersizse → 401 Unauthorized.
//
// HTTP header formatı: Authorization: Bearer <token>
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.tokenService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		// Downstream handler'lar r.Context().Value(ClaimsContextKey) ile erişir.
		ctx := context.WithValue(r.Context(), handlers.ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
