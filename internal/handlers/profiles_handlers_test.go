package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/sanjose/backend/internal/models"
)

func TestProfileEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, _, adminToken := createTestAdmin(t, env.db, "Admin", "admin-perfil@test.com")
	teacher, _, _ := createTestTeacher(t, env.db, "Elena Toro", "etoro@test.com")

	profilePath := fmt.Sprintf("/api/perfil/%s", teacher.ID)

	t.Run("GET /api/perfil/:profesorId before any write is not found", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, profilePath, nil, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "perfil no encontrado")
	})

	t.Run("POST /api/perfil/:profesorId creates the row on first write", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, profilePath, map[string]any{
			"nombre":           "Elena",
			"apellido":         "Toro",
			"dni":              "30111222",
			"fecha_nacimiento": "1985-06-15",
			"cargo":            "Maestra de grado",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		if env.countRows(t, &models.Profile{}, "teacher_id = ?", teacher.ID) != 1 {
			t.Fatalf("expected exactly one profile row after first write")
		}
	})

	t.Run("POST /api/perfil/:profesorId overwrites rather than duplicates", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, profilePath, map[string]any{
			"nombre":           "Elena",
			"apellido":         "Toro",
			"dni":              "30111222",
			"fecha_nacimiento": "1985-06-15",
			"cargo":            "Vicedirectora",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		if env.countRows(t, &models.Profile{}, "teacher_id = ?", teacher.ID) != 1 {
			t.Fatalf("expected overwrite to keep a single profile row")
		}
		var profile models.Profile
		if err := env.db.First(&profile, "teacher_id = ?", teacher.ID).Error; err != nil {
			t.Fatalf("reading profile: %v", err)
		}
		if profile.Position != "Vicedirectora" {
			t.Fatalf("expected cargo overwritten, got %q", profile.Position)
		}
	})

	t.Run("POST /api/perfil/:profesorId with empty fecha_nacimiento clears the stored date", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, profilePath, map[string]any{
			"nombre":           "Elena",
			"apellido":         "Toro",
			"fecha_nacimiento": "",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		var profile models.Profile
		if err := env.db.First(&profile, "teacher_id = ?", teacher.ID).Error; err != nil {
			t.Fatalf("reading profile: %v", err)
		}
		if profile.BirthDate != nil {
			t.Fatalf("expected cleared birth date, got %v", profile.BirthDate)
		}
	})

	t.Run("POST /api/perfil/:profesorId rejects a malformed date", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, profilePath, map[string]any{
			"fecha_nacimiento": "15/06/1985",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusBadRequest)
		resp.Body.Close()
	})

	t.Run("POST /api/perfil/:profesorId for an unknown teacher is not found", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/perfil/00000000-0000-0000-0000-000000000000", map[string]any{
			"nombre": "Fantasma",
		}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "profesor no encontrado")
	})

	t.Run("GET /api/perfil/:profesorId enriches with age and seniority across both period kinds", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, profilePath, map[string]any{
			"nombre":           "Elena",
			"apellido":         "Toro",
			"fecha_nacimiento": "1985-06-15",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		internalEnd := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
		if err := env.db.Create(&models.WorkPeriod{
			TeacherID: teacher.ID,
			StartDate: time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   &internalEnd,
		}).Error; err != nil {
			t.Fatalf("seeding internal period: %v", err)
		}
		externalEnd := time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC)
		if err := env.db.Create(&models.ExternalWorkPeriod{
			TeacherID: teacher.ID,
			StartDate: time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   &externalEnd,
			Employer:  "Colegio del Norte",
		}).Error; err != nil {
			t.Fatalf("seeding external period: %v", err)
		}

		getResp := performRequest(t, env.app, http.MethodGet, profilePath, nil, authHeaders(adminToken))
		body := decodeJSONMap(t, getResp)
		assertStatus(t, getResp, http.StatusOK)
		data := body["data"].(map[string]any)

		tenure, ok := data["total_tiempo_trabajado"].(map[string]any)
		if !ok {
			t.Fatalf("expected total_tiempo_trabajado object, got %+v", data["total_tiempo_trabajado"])
		}
		if tenure["years"] != float64(1) || tenure["months"] != float64(6) || tenure["days"] != float64(0) {
			t.Fatalf("expected 1y 6m 0d of seniority, got %+v", tenure)
		}

		if _, ok := data["edad_actual"].(map[string]any); !ok {
			t.Fatalf("expected edad_actual object, got %+v", data["edad_actual"])
		}
		periods, ok := data["periodos_trabajo"].([]any)
		if !ok || len(periods) != 1 {
			t.Fatalf("expected one embedded work period, got %+v", data["periodos_trabajo"])
		}
		external, ok := data["periodos_externos"].([]any)
		if !ok || len(external) != 1 {
			t.Fatalf("expected one embedded external period, got %+v", data["periodos_externos"])
		}
	})
}
