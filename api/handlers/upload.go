package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/anveshk/osintdex/db/kvdb"
	"github.com/anveshk/osintdex/logger"
	"github.com/anveshk/osintdex/services/ingest"
	"github.com/gin-gonic/gin"
)

type UploadResponse struct {
	JobID string `json:"job_id"`
}

func SetupUpload(router gin.IRouter, logger logger.Logger, service *ingest.Service, history kvdb.DB) {
	router.POST("/upload-data", handleUpload(service, logger))
	router.GET("/upload-status/:job_id", handleUploadStatus(service, logger))
	router.GET("/import-history", handleImportHistory(history, logger))
}

func handleUpload(service *ingest.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			logger.Warn("upload request carried no file", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"a file form field is required"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			logger.Error("could not open uploaded file", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not read uploaded file"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			logger.Error("could not read uploaded file", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not read uploaded file"})
			return
		}

		jobID, err := service.Submit(data, fileHeader.Filename)
		if err != nil {
			if errors.Is(err, ingest.ErrQueueFull) {
				c.Abort()
				writeResponse(c, nil, http.StatusTooManyRequests, []string{err.Error()})
				return
			}
			logger.Error("could not enqueue import", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, UploadResponse{JobID: jobID}, http.StatusAccepted, nil)
	}
}

func handleUploadStatus(service *ingest.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("job_id")

		job, err := service.Status(jobID)
		if err != nil {
			logger.Warn("status requested for unknown job", "job_id", jobID)
			c.Abort()
			writeResponse(c, nil, http.StatusNotFound, []string{err.Error()})
			return
		}

		writeResponse(c, job, http.StatusOK, nil)
	}
}

func handleImportHistory(history kvdb.DB, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := history.List()
		if err != nil {
			logger.Error("could not list import history", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not read import history"})
			return
		}

		records := make([]ingest.HistoryRecord, 0, len(entries))
		for jobID, value := range entries {
			var record ingest.HistoryRecord
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				logger.Error("corrupt import history record", "job_id", jobID, "err", err.Error())
				continue
			}
			records = append(records, record)
		}

		sort.Slice(records, func(i, j int) bool {
			return records[i].FinishedAt.After(records[j].FinishedAt)
		})

		writeResponse(c, records, http.StatusOK, nil)
	}
}
