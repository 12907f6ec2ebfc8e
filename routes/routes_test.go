package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/notify"
	"github.com/dcode-github/cozycorner/services"
	"github.com/dcode-github/cozycorner/storage"
	"github.com/dcode-github/cozycorner/store"
	"github.com/dcode-github/cozycorner/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	router *mux.Router
	st     *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := store.NewMemory()
	files, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	hook := notify.NewDispatcher(st.Notifications, nil)
	router := mux.NewRouter()
	Routes(router, Services{
		Auth:            services.NewAuthService(st.Users, utils.NewTokenManager("test-key", time.Hour)),
		Properties:      services.NewPropertyService(st.Properties, st.Users, nil),
		Appointments:    services.NewAppointmentService(st.Appointments, st.Properties, hook),
		Notifications:   services.NewNotificationService(st.Notifications),
		Favorites:       services.NewFavoriteService(st.Favorites, st.Properties),
		Recommendations: services.NewRecommendationService(st.Recommendations, st.Users, st.Properties, hook),
		Contacts:        services.NewContactService(st.Contacts),
		Uploads:         services.NewUploadService(files),
		UploadsDir:      files.BasePath(),
	})
	return &testServer{t: t, router: router, st: st}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(name, email, role string) string {
	s.t.Helper()
	rec := s.do("POST", "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1", "role": role,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var res struct{ Token string }
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(s.t, res.Token)
	return res.Token
}

func (s *testServer) admin() string {
	s.t.Helper()
	u := models.User{Name: "Root", Email: "root@example.com", Role: models.RoleAdmin}
	u.Password, _ = utils.HashPassword("secret1")
	require.NoError(s.t, s.st.Users.Insert(context.Background(), &u))
	rec := s.do("POST", "/api/auth/login", "", map[string]string{"email": "root@example.com", "password": "secret1"})
	require.Equal(s.t, http.StatusOK, rec.Code)
	var res struct{ Token string }
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createProperty(token string, price int64, amenities ...string) models.Property {
	s.t.Helper()
	rec := s.do("POST", "/api/properties", token, map[string]any{
		"title": "Home", "price": price, "location": "Pune", "propertyType": "apartment", "amenities": amenities,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Property](s.t, rec)
}

func TestSearchEndpoint(t *testing.T) {
	s := newTestServer(t)
	landlord := s.register("Lena", "lena@example.com", "landlord")
	for _, p := range []int64{100, 200, 300} {
		s.createProperty(landlord, p)
	}

	rec := s.do("GET", "/api/properties/search?minPrice=150&sortBy=price-desc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.ResultPage](t, rec)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Properties, 2)
	assert.EqualValues(t, 300, page.Properties[0].Price)

	rec = s.do("GET", "/api/properties?minPrice=500&maxPrice=100", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("GET", "/api/properties?limit=2&page=9", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, "[]", string(raw["properties"]))
	assert.JSONEq(t, "3", string(raw["total"]))
}

func TestPropertyLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("Lena", "lena@example.com", "landlord")
	other := s.register("Omar", "omar@example.com", "landlord")
	tenant := s.register("Tia", "tia@example.com", "tenant")

	rec := s.do("POST", "/api/properties", tenant, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("POST", "/api/properties", "", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	p := s.createProperty(owner, 100)
	path := "/api/properties/" + p.ID.Hex()

	rec = s.do("GET", path, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do("GET", "/api/properties/nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("PUT", path, other, map[string]any{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("PUT", path, owner, map[string]any{"title": "Renamed", "verified": true})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Property](t, rec)
	assert.Equal(t, "Renamed", updated.Title)
	assert.False(t, updated.Verified)

	rec = s.do("GET", "/api/properties/mine", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Property](t, rec), 1)

	rec = s.do("DELETE", path, owner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do("GET", path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveEndpoint(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("Lena", "lena@example.com", "landlord")
	admin := s.admin()
	p := s.createProperty(owner, 100)
	path := "/api/properties/approve/" + p.ID.Hex()

	rec := s.do("PUT", path, owner, map[string]any{"verified": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("PUT", path, admin, `{"verified":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("PUT", path, admin, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("PUT", path, admin, map[string]any{"verified": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Property](t, rec).Verified)

	rec = s.do("GET", "/api/properties/admin?limit=5", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.ResultPage](t, rec).Total)

	rec = s.do("GET", "/api/properties/admin", owner, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAppointmentFlowNotifies(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("Lena", "lena@example.com", "landlord")
	tenant := s.register("Tia", "tia@example.com", "tenant")
	p := s.createProperty(owner, 100)

	rec := s.do("POST", "/api/appointments", tenant, map[string]any{
		"propertyId": p.ID.Hex(),
		"date":       time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decode[models.Appointment](t, rec)

	rec = s.do("GET", "/api/notifications", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Notification](t, rec), 1)

	rec = s.do("PUT", "/api/appointments/"+a.ID.Hex(), tenant, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("PUT", "/api/appointments/"+a.ID.Hex(), owner, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AppointmentConfirmed, decode[models.Appointment](t, rec).Status)

	rec = s.do("GET", "/api/notifications", tenant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[[]models.Notification](t, rec)
	require.Len(t, notes, 1)
	assert.Equal(t, "Your appointment for Home has been confirmed", notes[0].Message)

	rec = s.do("GET", "/api/appointments", tenant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Appointment](t, rec), 1)

	rec = s.do("GET", "/api/appointments/all", tenant, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFavoritesAndRecommendations(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("Lena", "lena@example.com", "landlord")
	tenant := s.register("Tia", "tia@example.com", "tenant")
	friend := s.register("Fay", "fay@example.com", "tenant")
	p := s.createProperty(owner, 100)

	rec := s.do("POST", "/api/favorites", tenant, map[string]string{"propertyId": p.ID.Hex()})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do("POST", "/api/favorites", tenant, map[string]string{"propertyId": p.ID.Hex()})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do("GET", "/api/favorites/"+p.ID.Hex(), tenant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isFavorite":true}`, rec.Body.String())

	rec = s.do("GET", "/api/favorites", tenant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.APIResponse](t, rec).Success)

	rec = s.do("DELETE", "/api/favorites/"+p.ID.Hex(), tenant, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do("POST", "/api/recommend", tenant, map[string]string{"propertyId": p.ID.Hex(), "recipientEmail": "fay@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do("GET", "/api/recommendations", friend, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Data []models.RecommendedProperty `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Data, 1)
	assert.Equal(t, p.ID, res.Data[0].ID)

	rec = s.do("GET", "/api/notifications", friend, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Notification](t, rec), 1)
}

func TestContactAndAuthErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do("POST", "/api/contact", "", map[string]string{"name": "Gil", "email": "gil@example.com", "message": "Hello"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do("POST", "/api/contact", "", map[string]string{"name": "Gil"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.register("Lena", "lena@example.com", "landlord")
	rec = s.do("POST", "/api/auth/register", "", map[string]string{"name": "L", "email": "lena@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do("POST", "/api/auth/login", "", map[string]string{"email": "lena@example.com", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid credentials"}`, rec.Body.String())

	rec = s.do("GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadEndpoint(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("Lena", "lena@example.com", "landlord")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("images", "front.html")
	require.NoError(t, err)
	part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/properties/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+owner)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct{ URLs []string `json:"urls"` }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.URLs, 1)
	assert.True(t, strings.HasSuffix(res.URLs[0], ".png"), res.URLs[0])

	rec = s.do("GET", res.URLs[0], "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}
