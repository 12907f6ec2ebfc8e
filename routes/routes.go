package routes

import (
	"net/http"

	"github.com/dcode-github/cozycorner/controllers"
	"github.com/dcode-github/cozycorner/middleware"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/services"
	"github.com/gorilla/mux"
)

type Services struct {
	Auth            *services.AuthService
	Properties      *services.PropertyService
	Appointments    *services.AppointmentService
	Notifications   *services.NotificationService
	Favorites       *services.FavoriteService
	Recommendations *services.RecommendationService
	Contacts        *services.ContactService
	Uploads         *services.UploadService

	// UploadsDir is served under /uploads/ when files are kept on local disk.
	UploadsDir string
}

func Routes(router *mux.Router, s Services) {
	router.Use(middleware.RequestID, middleware.Logging)

	authenticate := middleware.Auth(s.Auth)
	protected := func(h http.HandlerFunc, roles ...models.Role) http.Handler {
		var handler http.Handler = h
		if len(roles) > 0 {
			handler = middleware.RequireRoles(roles...)(handler)
		}
		return authenticate(handler)
	}

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if s.UploadsDir != "" {
		router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.UploadsDir))))
	}

	api := router.PathPrefix("/api").Subrouter()

	// Auth routes
	api.HandleFunc("/auth/register", controllers.RegisterUser(s.Auth)).Methods("POST")
	api.HandleFunc("/auth/login", controllers.LoginUser(s.Auth)).Methods("POST")

	// Property routes. Fixed paths come before /properties/{id}.
	api.HandleFunc("/properties", controllers.SearchProperties(s.Properties)).Methods("GET")
	api.HandleFunc("/properties/search", controllers.SearchProperties(s.Properties)).Methods("GET")
	api.Handle("/properties/admin", protected(controllers.SearchProperties(s.Properties), models.RoleAdmin)).Methods("GET")
	api.Handle("/properties/mine", protected(controllers.MyProperties(s.Properties), models.RoleLandlord)).Methods("GET")
	api.Handle("/properties/upload", protected(controllers.UploadImages(s.Uploads), models.RoleLandlord)).Methods("POST")
	api.Handle("/properties/verify-document", protected(controllers.UploadDocument(s.Uploads), models.RoleLandlord)).Methods("POST")
	api.Handle("/properties/approve/{id}", protected(controllers.ApproveProperty(s.Properties), models.RoleAdmin)).Methods("PUT")
	api.Handle("/properties", protected(controllers.CreateProperty(s.Properties), models.RoleLandlord)).Methods("POST")
	api.HandleFunc("/properties/{id}", controllers.GetProperty(s.Properties)).Methods("GET")
	api.Handle("/properties/{id}", protected(controllers.UpdateProperty(s.Properties), models.RoleLandlord, models.RoleAdmin)).Methods("PUT")
	api.Handle("/properties/{id}", protected(controllers.DeleteProperty(s.Properties), models.RoleLandlord, models.RoleAdmin)).Methods("DELETE")

	// Appointment routes
	api.Handle("/appointments/all", protected(controllers.GetAllAppointments(s.Appointments), models.RoleAdmin)).Methods("GET")
	api.Handle("/appointments", protected(controllers.CreateAppointment(s.Appointments))).Methods("POST")
	api.Handle("/appointments", protected(controllers.GetAppointments(s.Appointments))).Methods("GET")
	api.Handle("/appointments/{id}", protected(controllers.UpdateAppointmentStatus(s.Appointments), models.RoleLandlord, models.RoleAdmin)).Methods("PUT")

	api.Handle("/notifications", protected(controllers.GetNotifications(s.Notifications))).Methods("GET")

	// Favorites routes
	api.Handle("/favorites", protected(controllers.AddFavorite(s.Favorites))).Methods("POST")
	api.Handle("/favorites", protected(controllers.GetFavorites(s.Favorites))).Methods("GET")
	api.Handle("/favorites/{propertyId}", protected(controllers.CheckFavorite(s.Favorites))).Methods("GET")
	api.Handle("/favorites/{propertyId}", protected(controllers.DeleteFavorite(s.Favorites))).Methods("DELETE")

	// Recommendations routes
	api.Handle("/recommend", protected(controllers.RecommendProperty(s.Recommendations))).Methods("POST")
	api.Handle("/recommendations", protected(controllers.GetRecommendations(s.Recommendations))).Methods("GET")

	api.HandleFunc("/contact", controllers.SendContact(s.Contacts)).Methods("POST")
}
