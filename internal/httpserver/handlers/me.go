package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
)

type meResponse struct {
	domain.User
	DisplayName string `json:"display_name"`
}

// Me returns the session user.
func Me(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := auth.UserFrom(r.Context())
		writeJSON(w, http.StatusOK, meResponse{User: *u, DisplayName: u.DisplayName()})
	}
}
