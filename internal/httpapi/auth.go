package httpapi

import (
	"net/http"

	"github.com/HappyHacker143/taskflow/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	User          *service.UserDTO `json:"user,omitempty"`
}

func (h *Handler) routeLogin(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) != 0 {
		writeError(w, http.StatusNotFound, "route not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleSession(w, r)
	case http.MethodPost:
		h.handleLogin(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) routeLogout(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) != 0 {
		writeError(w, http.StatusNotFound, "route not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	h.handleLogout(w, r)
}

// handleSession reports who the current cookie belongs to, if anyone.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.cookie.Name)
	if err != nil {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}

	user, err := h.service.Authenticate(r.Context(), cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}

	dto, err := h.service.GetUser(r.Context(), user.ID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: &dto})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookie.Name); err == nil {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			h.respondWithError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
