package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetRules returns the rules every generation on this server runs with
func (h *Handler) GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": h.Rules})
}
