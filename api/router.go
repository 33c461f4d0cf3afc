package api

import (
	"net/http"

	"github.com/anveshk/osintdex/api/handlers"
	"github.com/anveshk/osintdex/db/kvdb"
	"github.com/anveshk/osintdex/db/searchdb"
	"github.com/anveshk/osintdex/db/userdb"
	"github.com/anveshk/osintdex/logger"
	"github.com/anveshk/osintdex/services/ingest"
	"github.com/anveshk/osintdex/services/quota"
	"github.com/anveshk/osintdex/services/search"
	"github.com/anveshk/osintdex/validation"
	"github.com/gin-gonic/gin"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, searchDB searchdb.DB, userDB userdb.DB, historyDB kvdb.DB, ingestService *ingest.Service, validator *validation.Validator) {
	router.GET("/health", health())

	authed := router.Group("/")
	authed.Use(authMiddleware(userDB, logger))

	searchService := search.New(logger, searchDB)
	quotaGate := quota.New(logger, userDB)
	handlers.SetupSearch(authed, logger, searchService, quotaGate, validator)
	handlers.SetupStats(authed, logger, searchDB)

	admin := authed.Group("/admin")
	admin.Use(adminOnlyMiddleware(logger))
	handlers.SetupUpload(admin, logger, ingestService, historyDB)
	handlers.SetupAdmin(admin, logger, userDB, validator)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.Default()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
