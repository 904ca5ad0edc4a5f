package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"

	"github.com/vishalvikash93/imagevault/internal/config"
	"github.com/vishalvikash93/imagevault/internal/image"
	"github.com/vishalvikash93/imagevault/internal/metrics"
)

// MetadataPinger is the readiness view of a metadata repository.
type MetadataPinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config       config.Config
	Metadata     MetadataPinger
	ObjectStore  *minio.Client
	ImageService *image.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(metrics.RequestCounter())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/")
	if deps.ImageService != nil {
		image.RegisterRoutes(api, deps.ImageService)
	}

	return router
}
