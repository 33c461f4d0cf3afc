package handlers

import (
	"net/http"

	"github.com/anveshk/osintdex/db/userdb"
	"github.com/anveshk/osintdex/logger"
	"github.com/anveshk/osintdex/validation"
	"github.com/gin-gonic/gin"
)

type TeamRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	PlanType        string `json:"plan_type" validate:"max=32"`
	TotalSearches   int    `json:"total_searches" validate:"min=0"`
	LimitAllocation string `json:"limit_allocation" validate:"max=32"`
	AdminUserID     uint   `json:"admin_user_id" validate:"required"`
}

func SetupAdmin(router gin.IRouter, logger logger.Logger, users userdb.DB, validator *validation.Validator) {
	router.GET("/users", handleListUsers(users, logger))
	router.GET("/teams", handleListTeams(users, logger))
	router.POST("/teams", handleCreateTeam(users, logger, validator))
}

func handleListUsers(users userdb.DB, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allUsers, err := users.ListUsers()
		if err != nil {
			logger.Error("could not list users", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not list users"})
			return
		}

		writeResponse(c, allUsers, http.StatusOK, nil)
	}
}

func handleListTeams(users userdb.DB, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := users.ListTeams()
		if err != nil {
			logger.Error("could not list teams", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not list teams"})
			return
		}

		writeResponse(c, teams, http.StatusOK, nil)
	}
}

func handleCreateTeam(users userdb.DB, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := TeamRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected request body for create team", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate create team request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		team := userdb.Team{
			Name:            request.Name,
			PlanType:        request.PlanType,
			TotalSearches:   request.TotalSearches,
			LimitAllocation: request.LimitAllocation,
			AdminUserID:     request.AdminUserID,
		}
		if err := users.CreateTeam(&team); err != nil {
			logger.Error("could not create team", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not create team"})
			return
		}

		writeResponse(c, team, http.StatusCreated, nil)
	}
}
