package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"odeplac.in/pro/config"
	"odeplac.in/pro/models"
)

// PortalAuth resolves the {token} path segment into a client and stashes it
// in the request context. The token is the only credential: no session, no
// expiry. An unknown token returns 404, not 401, so the response does not
// confirm whether a token ever existed.
func PortalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := mux.Vars(r)["token"]
		if len(token) < 32 {
			http.NotFound(w, r)
			return
		}

		var client models.Client
		if err := config.DB.Where("portal_token = ? AND deleted_at IS NULL", token).First(&client).Error; err != nil {
			http.NotFound(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), portalClientKey, &client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPortalClient returns the client resolved by PortalAuth, or nil.
func GetPortalClient(r *http.Request) *models.Client {
	if c, ok := r.Context().Value(portalClientKey).(*models.Client); ok {
		return c
	}
	return nil
}
