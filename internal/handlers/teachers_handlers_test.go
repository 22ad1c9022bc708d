package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/sanjose/backend/internal/models"
)

func TestTeachersEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, _, adminToken := createTestAdmin(t, env.db, "Admin", "admin-prof@test.com")

	t.Run("POST /api/profesores creates the login user and the teacher row", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/profesores/", map[string]any{
			"nombre":     "Laura Diaz",
			"email":      "ldiaz@test.com",
			"telefono":   "555-0101",
			"contrasena": "claveinicial",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusCreated)

		var user models.User
		if err := env.db.First(&user, "email = ?", "ldiaz@test.com").Error; err != nil {
			t.Fatalf("expected a login user for the new teacher: %v", err)
		}
		if user.Role != models.UserRoleTeacher {
			t.Fatalf("expected role profesor, got %s", user.Role)
		}

		loginResp := performJSONRequest(t, env.app, http.MethodPost, "/api/login", map[string]any{
			"email":      "ldiaz@test.com",
			"contrasena": "claveinicial",
		}, nil)
		assertStatus(t, loginResp, http.StatusOK)
		loginResp.Body.Close()
	})

	t.Run("POST /api/profesores rejects a duplicate email", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/profesores/", map[string]any{
			"nombre":     "Otro Docente",
			"email":      "ldiaz@test.com",
			"contrasena": "otraclave",
		}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertEnvelopeError(t, body, "el email ya está registrado")
	})

	t.Run("POST /api/profesores requires nombre, email and contrasena", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/profesores/", map[string]any{
			"nombre": "Sin Email",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusBadRequest)
		resp.Body.Close()
	})

	t.Run("GET /api/profesores lists with pagination", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/profesores/?page=1&limit=1", nil, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		if _, ok := body["pagination"].(map[string]any); !ok {
			t.Fatalf("expected pagination object in list response")
		}
	})

	t.Run("PUT /api/profesores/:id updates both rows and can reset the password", func(t *testing.T) {
		teacher, _, _ := createTestTeacher(t, env.db, "Mario Ruiz", "mruiz@test.com")

		resp := performJSONRequest(t, env.app, http.MethodPut, fmt.Sprintf("/api/profesores/%s", teacher.ID), map[string]any{
			"nombre":     "Mario A. Ruiz",
			"email":      "mruiz@test.com",
			"telefono":   "555-0202",
			"contrasena": "clavenueva",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		var updated models.Teacher
		if err := env.db.First(&updated, "id = ?", teacher.ID).Error; err != nil {
			t.Fatalf("teacher row missing after update: %v", err)
		}
		if updated.Name != "Mario A. Ruiz" || updated.Phone != "555-0202" {
			t.Fatalf("teacher row not updated: %+v", updated)
		}

		loginResp := performJSONRequest(t, env.app, http.MethodPost, "/api/login", map[string]any{
			"email":      "mruiz@test.com",
			"contrasena": "clavenueva",
		}, nil)
		assertStatus(t, loginResp, http.StatusOK)
		loginResp.Body.Close()
	})

	t.Run("PUT /api/profesores/:id without contrasena keeps the old password", func(t *testing.T) {
		teacher, _, _ := createTestTeacher(t, env.db, "Nora Paz", "npaz@test.com")

		resp := performJSONRequest(t, env.app, http.MethodPut, fmt.Sprintf("/api/profesores/%s", teacher.ID), map[string]any{
			"nombre": "Nora Paz",
			"email":  "npaz@test.com",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		loginResp := performJSONRequest(t, env.app, http.MethodPost, "/api/login", map[string]any{
			"email":      "npaz@test.com",
			"contrasena": "secret123",
		}, nil)
		assertStatus(t, loginResp, http.StatusOK)
		loginResp.Body.Close()
	})

	t.Run("PUT /api/profesores/:id not found", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/profesores/00000000-0000-0000-0000-000000000000", map[string]any{
			"nombre": "Nadie",
			"email":  "nadie@test.com",
		}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "profesor no encontrado")
	})

	t.Run("DELETE /api/profesores/:id removes the teacher and every dependent row", func(t *testing.T) {
		teacher, user, _ := createTestTeacher(t, env.db, "Baja Total", "baja@test.com")
		if err := env.db.Create(&models.Profile{TeacherID: teacher.ID, FirstName: "Baja"}).Error; err != nil {
			t.Fatalf("seeding profile: %v", err)
		}
		if err := env.db.Create(&models.Schedule{TeacherID: teacher.ID, Day: "lunes", StartTime: "08:00", EndTime: "10:00"}).Error; err != nil {
			t.Fatalf("seeding schedule: %v", err)
		}

		resp := performRequest(t, env.app, http.MethodDelete, fmt.Sprintf("/api/profesores/%s", teacher.ID), nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		for name, count := range map[string]int64{
			"teacher":  env.countRows(t, &models.Teacher{}, "id = ?", teacher.ID),
			"user":     env.countRows(t, &models.User{}, "id = ?", user.ID),
			"profile":  env.countRows(t, &models.Profile{}, "teacher_id = ?", teacher.ID),
			"schedule": env.countRows(t, &models.Schedule{}, "teacher_id = ?", teacher.ID),
		} {
			if count != 0 {
				t.Fatalf("expected %s rows gone after delete, found %d", name, count)
			}
		}
	})

	t.Run("DELETE /api/profesores/:id not found", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/profesores/00000000-0000-0000-0000-000000000000", nil, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "profesor no encontrado")
	})
}

func (e *testEnv) countRows(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	return count
}
