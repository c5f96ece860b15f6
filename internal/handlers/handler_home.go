package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHome responds with a simple liveness message.
func GetHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "bank ledger api"})
}
