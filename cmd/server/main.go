package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sanjose/backend/internal/config"
	"github.com/sanjose/backend/internal/database"
	"github.com/sanjose/backend/internal/handlers"
	"github.com/sanjose/backend/internal/middleware"
	"github.com/sanjose/backend/internal/services"
	"github.com/sanjose/backend/internal/storage"
	"github.com/sanjose/backend/pkg/logger"
	"github.com/sanjose/backend/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret)

	db, err := database.Connect(cfg.DB, cfg.Seed)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	storageClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("minio initialization failed: %v", err)
	}
	if err := storageClient.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring minio bucket: %v", err)
	}

	accessPolicy := services.NewAccessPolicy(db)
	auditService := services.NewAuditService(db)

	authHandler := handlers.NewAuthHandler(db, auditService)
	teachersHandler := handlers.NewTeachersHandler(db, auditService)
	adminsHandler := handlers.NewAdministratorsHandler(db, storageClient, auditService)
	profilesHandler := handlers.NewProfilesHandler(db, storageClient, auditService)
	documentsHandler := handlers.NewDocumentsHandler(db, storageClient, auditService)
	periodsHandler := handlers.NewPeriodsHandler(db)
	licensesHandler := handlers.NewLicensesHandler(db)
	schedulesHandler := handlers.NewSchedulesHandler(db, accessPolicy)
	messagesHandler := handlers.NewMessagesHandler(db, auditService)

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

	// The system this replaces served uploads as static files; objects live in
	// MinIO now, so documents stream through these instead.
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

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
