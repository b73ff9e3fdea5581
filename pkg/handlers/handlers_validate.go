package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/internal/calendar"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/blocked"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
)

// ValidateInput checks a scheduling request without generating anything
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": validationMessage(err)})
		return
	}

	if len(input.Roster) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one roster entry is required",
		})
		return
	}

	target, err := calendar.ParseMonth(input.Month)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	// Names must stay distinct once normalised
	keys := make(map[models.NameKey]bool)
	for _, entry := range input.Roster {
		key := models.NewNameKey(entry.Name)
		if keys[key] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate roster name: " + entry.Name})
			return
		}
		keys[key] = true
	}

	// Blocked lines for names not on the roster are kept but never match anyone
	set := blocked.Parse(input.Blocked, target)
	unknown := []models.NameKey{}
	for _, key := range set.Keys() {
		if !keys[key] {
			unknown = append(unknown, key)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"roster_count":  len(input.Roster),
			"blocked_count": len(set),
			"days":          target.Days(),
			"slots":         target.Days() * len(models.SlotOrder),
		},
		"unknown_names": unknown,
	})
}
