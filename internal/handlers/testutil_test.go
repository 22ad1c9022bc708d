package handlers

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sanjose/backend/internal/middleware"
	"github.com/sanjose/backend/internal/models"
	"github.com/sanjose/backend/internal/services"
	"github.com/sanjose/backend/pkg/logger"
	"github.com/sanjose/backend/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		gosqlite.MustRegisterScalarFunction("NOW", 0, func(ctx *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return time.Now().UTC(), nil
		})
		logger.Init()
		utils.ConfigureJWT("test-secret")
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.Teacher{},
		&models.Administrator{},
		&models.Profile{},
		&models.WorkPeriod{},
		&models.ExternalWorkPeriod{},
		&models.License{},
		&models.Document{},
		&models.Schedule{},
		&models.Message{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	accessPolicy := services.NewAccessPolicy(db)
	auditService := services.NewAuditService(db)

	authHandler := NewAuthHandler(db, auditService)
	teachersHandler := NewTeachersHandler(db, auditService)
	adminsHandler := NewAdministratorsHandler(db, nil, auditService)
	profilesHandler := NewProfilesHandler(db, nil, auditService)
	documentsHandler := NewDocumentsHandler(db, nil, auditService)
	periodsHandler := NewPeriodsHandler(db)
	licensesHandler := NewLicensesHandler(db)
	schedulesHandler := NewSchedulesHandler(db, accessPolicy)
	messagesHandler := NewMessagesHandler(db, auditService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 50 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	api.Post("/login", authHandler.Login)
	api.Get("/user-details", authMiddleware.RequireAuth, authHandler.UserDetails)
	api.Get("/usuarios/:id", authMiddleware.RequireAuth, authHandler.GetUser)

	teacherRoutes := api.Group("/profesores", authMiddleware.RequireAuth)
	teacherRoutes.Get("/", teachersHandler.List)
	teacherRoutes.Post("/", teachersHandler.Create)
	teacherRoutes.Put("/:id", teachersHandler.Update)
	teacherRoutes.Delete("/:id", teachersHandler.Delete)

	teacherRoutes.Get("/:profesorId/periodos", periodsHandler.List)
	teacherRoutes.Post("/:profesorId/periodos", periodsHandler.Create)
	teacherRoutes.Put("/:profesorId/periodos/:periodoId", periodsHandler.Update)
	teacherRoutes.Delete("/:profesorId/periodos/:periodoId", periodsHandler.Delete)
	teacherRoutes.Get("/:profesorId/periodos-externos", periodsHandler.ListExternal)
	teacherRoutes.Post("/:profesorId/periodos-externos", periodsHandler.CreateExternal)
	teacherRoutes.Put("/:profesorId/periodos-externos/:periodoId", periodsHandler.UpdateExternal)
	teacherRoutes.Delete("/:profesorId/periodos-externos/:periodoId", periodsHandler.DeleteExternal)
	teacherRoutes.Get("/:profesorId/licencias", licensesHandler.List)
	teacherRoutes.Post("/:profesorId/licencias", licensesHandler.Create)
	teacherRoutes.Put("/:profesorId/licencias/:licenciaId", licensesHandler.Update)
	teacherRoutes.Delete("/:profesorId/licencias/:licenciaId", licensesHandler.Delete)

	adminRoutes := api.Group("/administradores", authMiddleware.RequireAuth, middleware.AdminOnly)
	adminRoutes.Get("/", adminsHandler.List)
	adminRoutes.Get("/:id", adminsHandler.Get)
	adminRoutes.Post("/", adminsHandler.Create)
	adminRoutes.Put("/:id", adminsHandler.Update)
	adminRoutes.Delete("/:id", adminsHandler.Delete)
	adminRoutes.Post("/:id/foto-perfil", adminsHandler.UploadPhoto)

	profileRoutes := api.Group("/perfil", authMiddleware.RequireAuth)
	profileRoutes.Get("/:profesorId", profilesHandler.Get)
	profileRoutes.Post("/:profesorId", profilesHandler.Upsert)
	profileRoutes.Post("/:profesorId/foto-perfil", profilesHandler.UploadPhoto)
	profileRoutes.Delete("/:profesorId/foto-perfil", profilesHandler.DeletePhoto)
	profileRoutes.Get("/:profesorId/archivos", documentsHandler.List)
	profileRoutes.Post("/:profesorId/archivos-adicionales", documentsHandler.UploadAdditional)
	profileRoutes.Post("/:profesorId/archivos/:tipoDocumento", documentsHandler.Upload)
	profileRoutes.Delete("/:profesorId/archivos/:tipoDocumento", documentsHandler.DeleteByType)

	api.Get("/archivos/:id/descargar", authMiddleware.RequireAuth, documentsHandler.Download)
	api.Delete("/archivos/:id", authMiddleware.RequireAuth, documentsHandler.Delete)

	scheduleRoutes := api.Group("/horarios", authMiddleware.RequireAuth)
	scheduleRoutes.Get("/profesor/:profesorId", schedulesHandler.ListByTeacher)
	scheduleRoutes.Post("/", schedulesHandler.Create)
	scheduleRoutes.Put("/:id", schedulesHandler.Update)
	scheduleRoutes.Delete("/:id", schedulesHandler.Delete)

	messageRoutes := api.Group("/mensajes", authMiddleware.RequireAuth)
	messageRoutes.Get("/grupos", messagesHandler.Groups)
	messageRoutes.Get("/conversacion/:usuarioId", messagesHandler.Conversation)
	messageRoutes.Get("/remitente/:usuarioId", messagesHandler.BySender)
	messageRoutes.Post("/enviar", messagesHandler.Send)
	messageRoutes.Delete("/:id", messagesHandler.Delete)

	return &testEnv{app: app, db: db}
}

func createTestUser(t *testing.T, db *gorm.DB, name, email, password string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

// createTestTeacher creates the login user plus the personnel row, the way the
// teacher creation endpoint does it.
func createTestTeacher(t *testing.T, db *gorm.DB, name, email string) (*models.Teacher, *models.User, string) {
	t.Helper()

	user, token := createTestUser(t, db, name, email, "secret123", models.UserRoleTeacher)
	teacher := &models.Teacher{
		Name:   name,
		Email:  email,
		UserID: user.ID,
	}
	if err := db.Create(teacher).Error; err != nil {
		t.Fatalf("failed creating test teacher: %v", err)
	}
	return teacher, user, token
}

func createTestAdmin(t *testing.T, db *gorm.DB, name, email string) (*models.Administrator, *models.User, string) {
	t.Helper()

	user, token := createTestUser(t, db, name, email, "secret123", models.UserRoleAdministrator)
	admin := &models.Administrator{
		Name:   name,
		Email:  email,
		UserID: user.ID,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("failed creating test administrator: %v", err)
	}
	return admin, user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
