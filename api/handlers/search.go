package handlers

import (
	"errors"
	"net/http"

	"github.com/anveshk/osintdex/logger"
	"github.com/anveshk/osintdex/services/quota"
	"github.com/anveshk/osintdex/services/search"
	"github.com/anveshk/osintdex/validation"
	"github.com/gin-gonic/gin"
)

type SearchRequest struct {
	Query string `form:"q" json:"q" validate:"required,valid_query,max=1000"`
	Type  string `form:"type" json:"type" validate:"valid_record_type"`
}

func SetupSearch(router gin.IRouter, logger logger.Logger, service *search.Service, gate *quota.Gate, validator *validation.Validator) {
	router.GET("/search", handleSearch(service, gate, logger, validator))
}

func handleSearch(service *search.Service, gate *quota.Gate, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		user := CurrentUser(c)
		if user == nil {
			c.Abort()
			writeResponse(c, nil, http.StatusUnauthorized, []string{"authentication required"})
			return
		}
		if err := gate.Precheck(user); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusForbidden, []string{err.Error()})
			return
		}

		result, err := service.Search(c.Request.Context(), request.Query, request.Type)
		if err != nil {
			logger.Error("search failed", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusServiceUnavailable, []string{"search is temporarily unavailable, please retry"})
			return
		}

		// The decrement and the log row happen only once a response has
		// been assembled; a cancelled search costs nothing.
		if err := gate.Consume(user, request.Query, request.Type, result.TotalResults); err != nil {
			if errors.Is(err, quota.ErrExhausted) {
				c.Abort()
				writeResponse(c, nil, http.StatusForbidden, []string{err.Error()})
				return
			}
			logger.Error("could not consume search allowance", "user_id", user.ID, "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not record search"})
			return
		}

		writeResponse(c, result, http.StatusOK, nil)
	}
}
