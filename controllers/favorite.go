package controllers

import (
	"net/http"

	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/services"
	"github.com/gorilla/mux"
)

type favoriteRequest struct {
	PropertyID string `json:"propertyId"`
}

func AddFavorite(favorites *services.FavoriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		var req favoriteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		fav, err := favorites.Add(r.Context(), caller, req.PropertyID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "Property added to favorites",
			Data:    fav,
		})
	}
}

func GetFavorites(favorites *services.FavoriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		list, err := favorites.List(r.Context(), caller)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Favorites retrieved successfully",
			Data:    list,
		})
	}
}

func CheckFavorite(favorites *services.FavoriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		isFavorite, err := favorites.IsFavorited(r.Context(), caller, mux.Vars(r)["propertyId"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": isFavorite})
	}
}

func DeleteFavorite(favorites *services.FavoriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		if err := favorites.Remove(r.Context(), caller, mux.Vars(r)["propertyId"]); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Property removed from favorites",
		})
	}
}
