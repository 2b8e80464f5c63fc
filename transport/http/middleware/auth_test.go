package middleware_test

import (
	"context"
	"homestay/config"
	"homestay/infras/jwt"
	jwtMocks "homestay/infras/jwt/mocks"
	"homestay/infras/otel/mocks"
	"homestay/permissions"
	"homestay/shared"
	"homestay/shared/constant"
	"homestay/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

var testPermissions = &permissions.PermissionData{
	Endpoints: []permissions.Permission{
		{Path: "/v1/homestays", Method: http.MethodGet, Skip: true},
		{Path: "/v1/bookings/{id}/status", Method: http.MethodPatch, Permissions: []string{constant.RoleOwner, constant.RoleAdmin}},
		{Path: "/v1/cron/update-booking-status", Method: http.MethodGet, Permissions: []string{constant.RoleAdmin}},
	},
}

func newServer(t *testing.T, tokenJWT jwt.JWT) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.APIKey = "secret-key"

	auth := middleware.NewAuthRoleMiddleware(tokenJWT, mocks.NewOtel(), testPermissions, cfg)

	ok := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", shared.UserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	}

	router := chi.NewRouter()
	router.Use(auth.APIKey, auth.Auth, auth.RBAC)
	router.Route("/v1", func(r chi.Router) {
		r.Route("/homestays", func(r chi.Router) { r.Get("/", ok) })
		r.Route("/bookings", func(r chi.Router) { r.Patch("/{id}/status", ok) })
		r.Route("/cron", func(r chi.Router) { r.Get("/update-booking-status", ok) })
	})

	return router
}

func TestAuthRole(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		target       string
		header       map[string]string
		claims       *jwt.Claims
		expectedCode int
		expectedUser string
	}{
		{name: "public route", method: http.MethodGet, target: "/v1/homestays", expectedCode: http.StatusOK},
		{name: "missing token", method: http.MethodPatch, target: "/v1/bookings/b1/status", expectedCode: http.StatusUnauthorized},
		{
			name:         "owner allowed",
			method:       http.MethodPatch,
			target:       "/v1/bookings/b1/status",
			header:       map[string]string{constant.RequestHeaderAuthorization: "Bearer token"},
			claims:       &jwt.Claims{UserID: "owner-1", Email: "o@example.com", Role: constant.RoleOwner},
			expectedCode: http.StatusOK,
			expectedUser: "owner-1",
		},
		{
			name:         "customer refused",
			method:       http.MethodPatch,
			target:       "/v1/bookings/b1/status",
			header:       map[string]string{constant.RequestHeaderAuthorization: "Bearer token"},
			claims:       &jwt.Claims{UserID: "customer-1", Email: "c@example.com", Role: constant.RoleCustomer},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "claims without user",
			method:       http.MethodPatch,
			target:       "/v1/bookings/b1/status",
			header:       map[string]string{constant.RequestHeaderAuthorization: "Bearer token"},
			claims:       &jwt.Claims{Role: constant.RoleOwner},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "api key",
			method:       http.MethodGet,
			target:       "/v1/cron/update-booking-status",
			header:       map[string]string{constant.RequestHeaderAPIKey: "secret-key"},
			expectedCode: http.StatusOK,
		},
		{
			name:         "wrong api key",
			method:       http.MethodGet,
			target:       "/v1/cron/update-booking-status",
			header:       map[string]string{constant.RequestHeaderAPIKey: "guess"},
			expectedCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenJWT := jwtMocks.NewMockJWT(gomock.NewController(t))
			if tt.claims != nil {
				tokenJWT.EXPECT().ValidateToken(gomock.Any(), "token", jwt.AccessToken).Return(tt.claims, nil)
			}

			req := httptest.NewRequestWithContext(context.Background(), tt.method, tt.target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			newServer(t, tokenJWT).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Equal(t, tt.expectedUser, rec.Header().Get("X-User"))
		})
	}
}
