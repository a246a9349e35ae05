// Package handlers, HTTP endpoint'lerini yöneten katmandır.
//
// Handler'lar ince tutulur: request parse → service çağrısı → response yaz.
// İş mantığı service katmanındadır; handler hiçbir zaman repository'ye
// doğrudan dokunmaz.
package handlers

import (
	"net/http"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
)

// contextKey, context value çakışmalarını önlemek için özel tip.
// string yerine özel tip kullanmak Go'nun önerdiği pattern'dir —
// başka bir paketin "claims" string key'i ile çakışma imkansızlaşır.
type contextKey string

// ClaimsContextKey, auth middleware'ının doğrulanmış token claim'lerini
// request context'ine koyduğu key.
const ClaimsContextKey contextKey = "claims"

// claimsFrom, context'ten doğrulanmış kimliği çıkarır.
// Middleware atlanmışsa (yanlış route kaydı) 401 yazar ve ok=false döner.
func claimsFrom(w http.ResponseWriter, r *http.Request) (*models.TokenClaims, bool) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok || claims == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return claims, true
}
