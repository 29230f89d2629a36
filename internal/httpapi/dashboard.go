package httpapi

import (
	"errors"
	"net/http"

	"event-planner-web/internal/attendance"

	"github.com/gin-gonic/gin"
)

func (h Handlers) AttendanceDashboard(c *gin.Context) {
	var req attendance.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	d, err := h.Attendance.Dashboard(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
