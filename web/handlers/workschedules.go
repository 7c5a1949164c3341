package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/security"
	"github.com/rodrigoinhaia/DiinPonto/web/common"
	"github.com/rodrigoinhaia/DiinPonto/web/middlewares"
)

type WorkScheduleEndpoint struct {
	dm *core.DatabaseManager
}

func RegisterWorkSchedules(r *gin.RouterGroup, dm *core.DatabaseManager) {
	endpoint := &WorkScheduleEndpoint{dm: dm}

	read := middlewares.RequirePermission(security.ActionRead, security.ResourceWorkSchedule)
	manage := middlewares.RequirePermission(security.ActionManage, security.ResourceWorkSchedule)
	r.GET("/work-schedules", read, endpoint.Search)
	r.POST("/work-schedules", manage, endpoint.Upsert)
	r.DELETE("/work-schedules/:id", manage, endpoint.Delete)
}

func (ep *WorkScheduleEndpoint) Search(c *gin.Context) {
	db := ep.dm.DB(c.Request.Context())

	q := db.Model(&models.WorkSchedule{}).Preload("User")
	if userID := c.Query("userId"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var schedules []models.WorkSchedule
	if err := q.Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(schedules, int64(len(schedules))))
}

type WorkScheduleDTO struct {
	UserID     string  `json:"userId" binding:"required"`
	StartTime  string  `json:"startTime" binding:"required"`
	EndTime    string  `json:"endTime" binding:"required"`
	BreakStart *string `json:"breakStart"`
	BreakEnd   *string `json:"breakEnd"`
	DaysOfWeek []int   `json:"daysOfWeek" binding:"required"`
}

// Upsert creates or replaces the user's single schedule.
func (ep *WorkScheduleEndpoint) Upsert(c *gin.Context) {
	var dto WorkScheduleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}
	for _, day := range dto.DaysOfWeek {
		if day < 0 || day > 6 {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("daysOfWeek entries must be 0..6"))
			return
		}
	}

	days, err := json.Marshal(dto.DaysOfWeek)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	db := ep.dm.DB(c.Request.Context())

	user, err := models.FindUserByID(db, dto.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("User not found"))
		return
	}

	schedule := &models.WorkSchedule{
		UserID:     dto.UserID,
		StartTime:  dto.StartTime,
		EndTime:    dto.EndTime,
		BreakStart: dto.BreakStart,
		BreakEnd:   dto.BreakEnd,
		DaysOfWeek: days,
	}

	var existing models.WorkSchedule
	err = db.First(&existing, "user_id = ?", dto.UserID).Error
	switch {
	case err == nil:
		schedule.ID = existing.ID
		err = db.Model(&existing).Updates(map[string]interface{}{
			"start_time":   schedule.StartTime,
			"end_time":     schedule.EndTime,
			"break_start":  schedule.BreakStart,
			"break_end":    schedule.BreakEnd,
			"days_of_week": schedule.DaysOfWeek,
		}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = db.Create(schedule).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(schedule))
}

func (ep *WorkScheduleEndpoint) Delete(c *gin.Context) {
	db := ep.dm.DB(c.Request.Context())

	res := db.Delete(&models.WorkSchedule{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(res.Error.Error()))
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Work schedule not found"))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
}
