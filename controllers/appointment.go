package controllers

import (
	"net/http"

	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/services"
	"github.com/gorilla/mux"
)

func CreateAppointment(appointments *services.AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		var in services.CreateAppointmentInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		a, err := appointments.Create(r.Context(), caller, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

func GetAppointments(appointments *services.AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		list, err := appointments.ListMine(r.Context(), caller)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetAllAppointments(appointments *services.AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		list, err := appointments.ListAll(r.Context(), caller)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type statusRequest struct {
	Status models.AppointmentStatus `json:"status"`
}

func UpdateAppointmentStatus(appointments *services.AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		var req statusRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		a, err := appointments.UpdateStatus(r.Context(), caller, mux.Vars(r)["id"], req.Status)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func GetNotifications(notifications *services.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		list, err := notifications.List(r.Context(), caller)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
