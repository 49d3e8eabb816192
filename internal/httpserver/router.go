package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires the storefront routes.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &cartHandlers{deps: deps, opts: opts, logger: logger}
	router.GET("/cart", h.getCart)
	router.POST("/cart/lines", h.addLine)
	router.PATCH("/cart/lines/:lineId", h.updateLine)
	router.DELETE("/cart/lines/:lineId", h.removeLine)

	p := &productHandlers{deps: deps}
	router.GET("/products", p.list)
	router.GET("/products/:handle", p.getByHandle)

	return router
}
