package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/security"
	"github.com/rodrigoinhaia/DiinPonto/timeclock"
	"github.com/rodrigoinhaia/DiinPonto/web/common"
	"github.com/rodrigoinhaia/DiinPonto/web/middlewares"
)

type TimeRecordEndpoint struct {
	dm   *core.DatabaseManager
	mode timeclock.Mode
}

func RegisterTimeRecords(r *gin.RouterGroup, dm *core.DatabaseManager, mode timeclock.Mode) {
	endpoint := &TimeRecordEndpoint{dm: dm, mode: mode}

	create := middlewares.RequirePermission(security.ActionCreate, security.ResourceTimeRecord)
	read := middlewares.RequirePermission(security.ActionRead, security.ResourceTimeRecord)
	r.POST("/time-record", create, endpoint.Punch)
	r.GET("/time-record", read, endpoint.List)
	r.GET("/time-record/last", read, endpoint.Last)
	r.GET("/time-record/today", read, endpoint.Today)
}

type PunchDTO struct {
	Type     models.RecordType `json:"type" binding:"required"`
	Location *models.Location  `json:"location"`
	Device   string            `json:"device" binding:"required"`
}

// Punch registers a punch for the authenticated user, stamped with the
// server clock.
func (ep *TimeRecordEndpoint) Punch(c *gin.Context) {
	var dto PunchDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	identity := middlewares.IdentityFrom(c)
	db := ep.dm.DB(c.Request.Context())

	record, err := timeclock.Record(db, timeclock.RecordOptions{
		UserID:   identity.UserID,
		Type:     dto.Type,
		Location: dto.Location,
		Device:   dto.Device,
		Mode:     ep.mode,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(record))
}

// List returns the caller's punches, newest first, optionally bounded
// by from/to dates.
func (ep *TimeRecordEndpoint) List(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	db := ep.dm.DB(c.Request.Context())

	q := db.Where("user_id = ?", identity.UserID).Order("timestamp desc")
	if v := c.Query("from"); v != "" {
		from, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid from date"))
			return
		}
		q = q.Where("timestamp >= ?", from)
	}
	if v := c.Query("to"); v != "" {
		to, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid to date"))
			return
		}
		q = q.Where("timestamp < ?", to.Add(24*time.Hour))
	}

	var records []models.TimeRecord
	if err := q.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(records, int64(len(records))))
}

func (ep *TimeRecordEndpoint) Last(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	db := ep.dm.DB(c.Request.Context())

	record, err := timeclock.LastRecord(db, identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(record))
}

func (ep *TimeRecordEndpoint) Today(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	db := ep.dm.DB(c.Request.Context())

	records, err := timeclock.TodayRecords(db, identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(records))
}
