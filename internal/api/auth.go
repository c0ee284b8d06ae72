package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/nordmart/storefront/internal/domain/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func encodeTokens(e *jx.Encoder, t *auth.Tokens) {
	e.FieldStart("accessToken")
	e.Str(t.Access)
	e.FieldStart("refreshToken")
	e.Str(t.Refresh)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, u, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondDomainError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		encodeTokens(e, tokens)
		e.FieldStart("user")
		e.ObjStart()
		e.FieldStart("id")
		e.Str(u.ID)
		e.FieldStart("email")
		e.Str(u.Email)
		e.FieldStart("name")
		e.Str(u.Name)
		e.FieldStart("role")
		e.Str(string(u.Role))
		e.ObjEnd()
		e.ObjEnd()
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		encodeTokens(e, tokens)
		e.ObjEnd()
	})
}
