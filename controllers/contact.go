package controllers

import (
	"net/http"

	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/services"
)

func SendContact(contacts *services.ContactService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c models.Contact
		if err := decodeJSON(r, &c); err != nil {
			writeError(w, r, err)
			return
		}
		if _, err := contacts.Send(r.Context(), c); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "Message sent successfully",
		})
	}
}
