package handlers

import (
	"net/http"

	"github.com/anveshk/osintdex/db/userdb"
	"github.com/gin-gonic/gin"
)

// ContextUserKey is where the auth middleware stores the resolved user.
const ContextUserKey = "user"

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data interface{}, statusCode int, errors []string) {

	if statusCode == http.StatusNoContent {
		c.JSON(statusCode, nil)
		return

	}

	response := response{
		Data:   data,
		Errors: errors,
	}

	c.JSON(statusCode, response)
}

// CurrentUser returns the authenticated caller set by the auth
// middleware, or nil on routes registered without it.
func CurrentUser(c *gin.Context) *userdb.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*userdb.User)
	if !ok {
		return nil
	}
	return user
}
