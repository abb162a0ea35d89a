package router

import (
	"log/slog"
	"net/http"

	"subvenciones/controllers"
	dbpkg "subvenciones/db"
	"subvenciones/middleware"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares: public routes, authenticated
// routes, "validated" routes (Authorizer) and admin routes (Adminizer).
func Initialize(r *gin.Engine, env *controllers.Env) {
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(dbpkg.SetDBtoContext(env.DB))
	r.Use(controllers.SetEnvToContext(env))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Public (no auth)
	api.POST("/register", Logger(), controllers.Register)
	api.POST("/login", Logger(), controllers.Login)
	api.POST("/refresh", Logger(), controllers.Refresh)

	// Authenticated routes (token required)
	auth := api.Group("")
	auth.Use(controllers.AuthRequired())

	// Validated routes (token + active user)
	validated := auth.Group("")
	validated.Use(Authorizer())

	validated.GET("/me", Logger(), controllers.Me)
	validated.PUT("/me", Logger(), controllers.UpdateCurrentUser)

	// Clients
	validated.GET("/clients", Logger(), controllers.GetClients)
	validated.GET("/clients/:id", Logger(), controllers.GetClientByID)
	validated.POST("/clients", Logger(), controllers.CreateClient)
	validated.PUT("/clients/:id", Logger(), controllers.UpdateClient)
	validated.DELETE("/clients/:id", Logger(), controllers.DeleteClient)

	// Projects
	validated.GET("/projects", Logger(), controllers.GetProjects)
	validated.GET("/projects/:id", Logger(), controllers.GetProjectByID)
	validated.POST("/projects", Logger(), controllers.CreateProject)
	validated.PUT("/projects/:id", Logger(), controllers.UpdateProject)
	validated.PUT("/projects/:id/status", Logger(), controllers.UpdateProjectStatus)
	validated.DELETE("/projects/:id", Logger(), controllers.DeleteProject)

	// Sections (memoria técnica)
	validated.GET("/projects/:id/sections", Logger(), controllers.GetSections)
	validated.POST("/projects/:id/sections", Logger(), controllers.CreateSection)
	validated.POST("/projects/:id/sections/generate", Logger(), controllers.GenerateSections)
	validated.PUT("/projects/:id/sections/:sectionId", Logger(), controllers.UpdateSection)
	validated.DELETE("/projects/:id/sections/:sectionId", Logger(), controllers.DeleteSection)

	// Documents (bases da convocatoria)
	validated.GET("/projects/:id/documents", Logger(), controllers.GetDocuments)
	validated.POST("/projects/:id/documents", Logger(), controllers.UploadDocument)
	validated.GET("/projects/:id/documents/:docId/download", Logger(), controllers.DownloadDocument)
	validated.DELETE("/projects/:id/documents/:docId", Logger(), controllers.DeleteDocument)

	// RAG + reports
	validated.POST("/projects/:id/ingest", Logger(), controllers.IngestProject)
	validated.POST("/projects/:id/optimize", Logger(), controllers.OptimizeSection)
	validated.POST("/projects/:id/viability", Logger(), controllers.GenerateViability)
	validated.POST("/projects/:id/review", Logger(), controllers.GenerateReview)
	validated.POST("/projects/:id/summary", Logger(), controllers.GenerateSummary)

	// Export
	validated.GET("/projects/:id/export", Logger(), controllers.ExportProject)

	// Admin routes
	admin := validated.Group("")
	admin.Use(Adminizer())

	admin.GET("/users", Logger(), controllers.GetUsers)
	admin.POST("/users", Logger(), controllers.CreateUser)
	admin.GET("/audit-logs", Logger(), controllers.GetAuditLogs)

	slog.Default().Info("routes initialized", "component", "router")
}
