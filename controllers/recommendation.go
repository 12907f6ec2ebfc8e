package controllers

import (
	"net/http"

	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/services"
)

func RecommendProperty(recommendations *services.RecommendationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		var in services.RecommendInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		if _, err := recommendations.Recommend(r.Context(), caller, in); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Recommendation sent"})
	}
}

func GetRecommendations(recommendations *services.RecommendationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		list, err := recommendations.List(r.Context(), caller)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Recommendations retrieved successfully",
			Data:    list,
		})
	}
}
