package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/sanjose/backend/internal/models"
)

func TestLicenseEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, _, adminToken := createTestAdmin(t, env.db, "Admin", "admin-licencias@test.com")
	teacher, _, _ := createTestTeacher(t, env.db, "Ana Quiroga", "aquiroga@test.com")

	basePath := fmt.Sprintf("/api/profesores/%s/licencias", teacher.ID)

	t.Run("POST records a license with a reason", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, basePath, map[string]any{
			"fecha_inicio": "2024-05-01",
			"fecha_fin":    "2024-05-15",
			"motivo":       "licencia médica",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	})

	t.Run("POST accepts an overlapping license", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, basePath, map[string]any{
			"fecha_inicio": "2024-05-10",
			"fecha_fin":    "2024-06-10",
			"motivo":       "licencia por estudio",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusCreated)
		resp.Body.Close()

		if got := env.countRows(t, &models.License{}, "teacher_id = ?", teacher.ID); got != 2 {
			t.Fatalf("expected both overlapping licenses stored, got %d", got)
		}
	})

	t.Run("POST without fecha_inicio is rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, basePath, map[string]any{
			"fecha_fin": "2024-05-15",
		}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertEnvelopeError(t, body, "fecha_inicio es obligatoria")
	})

	t.Run("POST with fin before inicio is rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, basePath, map[string]any{
			"fecha_inicio": "2024-06-01",
			"fecha_fin":    "2024-05-01",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusBadRequest)
		resp.Body.Close()
	})

	t.Run("GET lists the teacher's licenses", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, basePath, nil, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data, ok := body["data"].([]any)
		if !ok || len(data) != 2 {
			t.Fatalf("expected two licenses, got %+v", body["data"])
		}
	})

	t.Run("PUT rewrites an existing license", func(t *testing.T) {
		var license models.License
		if err := env.db.First(&license, "teacher_id = ?", teacher.ID).Error; err != nil {
			t.Fatalf("reading seeded license: %v", err)
		}

		resp := performJSONRequest(t, env.app, http.MethodPut, fmt.Sprintf("%s/%s", basePath, license.ID), map[string]any{
			"fecha_inicio": "2024-05-02",
			"fecha_fin":    "2024-05-20",
			"motivo":       "licencia médica prolongada",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		if err := env.db.First(&license, "id = ?", license.ID).Error; err != nil {
			t.Fatalf("rereading license: %v", err)
		}
		if license.Reason == nil || *license.Reason != "licencia médica prolongada" {
			t.Fatalf("expected updated motivo, got %+v", license.Reason)
		}
	})

	t.Run("PUT unknown license is not found", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, basePath+"/00000000-0000-0000-0000-000000000000", map[string]any{
			"fecha_inicio": "2024-05-01",
		}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "licencia no encontrada")
	})

	t.Run("DELETE unknown license is not found", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, basePath+"/00000000-0000-0000-0000-000000000000", nil, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "licencia no encontrada")
	})

	t.Run("DELETE removes an existing license", func(t *testing.T) {
		var license models.License
		if err := env.db.First(&license, "teacher_id = ?", teacher.ID).Error; err != nil {
			t.Fatalf("reading seeded license: %v", err)
		}
		resp := performRequest(t, env.app, http.MethodDelete, fmt.Sprintf("%s/%s", basePath, license.ID), nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		if env.countRows(t, &models.License{}, "id = ?", license.ID) != 0 {
			t.Fatalf("license row still present after delete")
		}
	})
}
