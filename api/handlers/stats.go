package handlers

import (
	"net/http"

	"github.com/anveshk/osintdex/db/searchdb"
	"github.com/anveshk/osintdex/logger"
	"github.com/gin-gonic/gin"
)

type StatsResponse struct {
	TotalDocuments uint64 `json:"total_documents"`
}

func SetupStats(router gin.IRouter, logger logger.Logger, store searchdb.DB) {
	router.GET("/stats", handleStats(store, logger))
}

func handleStats(store searchdb.DB, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := store.DocCount()
		if err != nil {
			logger.Error("could not get document count", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not get index stats"})
			return
		}

		writeResponse(c, StatsResponse{TotalDocuments: count}, http.StatusOK, nil)
	}
}
