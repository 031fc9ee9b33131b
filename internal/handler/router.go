package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig controls how the HTTP surface is mounted.
type RouterConfig struct {
	APIPrefix         string
	UploadsPublicPath string
	UploadsDir        string
	ExposeDocs        bool
}

// Handlers groups every endpoint implementation.
type Handlers struct {
	Content *ContentHandler
	Gallery *GalleryHandler
	Event   *EventHandler
	Upload  *UploadHandler
	Auth    *AuthHandler
	Health  *HealthHandler
}

// Guards are the middleware chains placed in front of protected routes.
// Admin guards every admin listing and write; Upload additionally throttles
// upload endpoints.
type Guards struct {
	Admin  gin.HandlersChain
	Upload gin.HandlersChain
}

// RegisterRoutes mounts the public, admin and operational routes on r.
func RegisterRoutes(r *gin.Engine, cfg RouterConfig, h Handlers, guards Guards) {
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	if cfg.UploadsPublicPath == "" {
		cfg.UploadsPublicPath = "/uploads"
	}

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Prometheus)
	if cfg.UploadsDir != "" {
		r.Static(cfg.UploadsPublicPath, cfg.UploadsDir)
	}
	if cfg.ExposeDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.Auth.Login)

	admin := api.Group("")
	admin.Use(guards.Admin...)

	api.GET("/content/:typeSlug", h.Content.ListPublished)
	admin.GET("/content/admin/all", h.Content.ListAllForAdmin)
	admin.POST("/content", h.Content.Create)
	admin.PUT("/content/:id", h.Content.Update)
	admin.DELETE("/content/:id", h.Content.Delete)

	api.GET("/gallery/public", h.Gallery.ListPublic)
	admin.GET("/gallery/admin/all", h.Gallery.ListForAdmin)
	admin.POST("/gallery", h.Gallery.Create)
	admin.PUT("/gallery/:id", h.Gallery.Update)
	admin.DELETE("/gallery/:id", h.Gallery.Delete)

	api.GET("/events", h.Event.List)
	api.GET("/events/export", h.Event.Export)
	api.GET("/events/:id", h.Event.Get)
	admin.POST("/events", h.Event.Create)
	admin.PUT("/events/:id", h.Event.Update)
	admin.DELETE("/events/:id", h.Event.Delete)

	uploads := admin.Group("")
	uploads.Use(guards.Upload...)
	uploads.POST("/upload", h.Upload.Image)
	uploads.POST("/upload-pdf", h.Upload.PDF)
}
