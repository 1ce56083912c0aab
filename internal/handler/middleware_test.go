package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/utils"
)

type fakeUserRepo struct {
	repository.UserRepository
	users map[uint]*domain.User
}

func (f *fakeUserRepo) FindByID(id uint) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func testRouter(users repository.UserRepository, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Authenticate(), RequireRole(users, role), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": currentUserID(c)})
	})
	return router
}

func activeUser(id uint, role string) *domain.User {
	user := &domain.User{Role: role, IsActive: true}
	user.ID = id
	return user
}

func TestAuthenticate(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]*domain.User{
		1: activeUser(1, domain.RoleDoctor),
	}}
	router := testRouter(users, domain.RoleDoctor)

	token, err := utils.GenerateToken(1, domain.RoleDoctor)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc123", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	inactive := activeUser(3, domain.RoleAdmin)
	inactive.IsActive = false
	users := &fakeUserRepo{users: map[uint]*domain.User{
		1: activeUser(1, domain.RoleAdmin),
		2: activeUser(2, domain.RolePatient),
		3: inactive,
	}}
	router := testRouter(users, domain.RoleAdmin)

	tests := []struct {
		name       string
		userID     uint
		role       string
		wantStatus int
	}{
		{"matching role", 1, domain.RoleAdmin, http.StatusOK},
		{"wrong role", 2, domain.RolePatient, http.StatusForbidden},
		{"inactive account", 3, domain.RoleAdmin, http.StatusForbidden},
		{"deleted account", 99, domain.RoleAdmin, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := utils.GenerateToken(tt.userID, tt.role)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRequireRoleMessage(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]*domain.User{}}
	router := testRouter(users, domain.RoleAdmin)

	token, err := utils.GenerateToken(5, domain.RolePatient)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	want := `{"error":"Admin access required"}`
	if rec.Body.String() != want {
		t.Errorf("body = %s, want %s", rec.Body.String(), want)
	}
}
