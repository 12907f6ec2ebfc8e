package controllers

import (
	"net/http"

	"github.com/dcode-github/cozycorner/services"
)

func RegisterUser(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.RegisterInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := auth.Register(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		token, err := auth.Token(user)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, Response{Message: "User registered successfully", Token: token})
	}
}

func LoginUser(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.LoginInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		token, _, err := auth.Login(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Response{Message: "Login successful", Token: token})
	}
}
