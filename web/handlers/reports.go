package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/reports"
	"github.com/rodrigoinhaia/DiinPonto/security"
	"github.com/rodrigoinhaia/DiinPonto/web/common"
	"github.com/rodrigoinhaia/DiinPonto/web/middlewares"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportEndpoint struct {
	dm *core.DatabaseManager
}

func RegisterReports(r *gin.RouterGroup, dm *core.DatabaseManager) {
	endpoint := &ReportEndpoint{dm: dm}

	read := middlewares.RequirePermission(security.ActionRead, security.ResourceReport)
	manage := middlewares.RequirePermission(security.ActionManage, security.ResourceReport)
	r.POST("/reports/search", manage, endpoint.Search)
	r.GET("/reports/records", manage, endpoint.Records)
	r.GET("/reports/summary", manage, endpoint.Summary)
	r.GET("/reports/late", manage, endpoint.Late)
	r.GET("/reports/overtime", manage, endpoint.Overtime)
	r.GET("/reports/records/export", manage, endpoint.ExportRecords)
	r.GET("/reports/late/export", manage, endpoint.ExportLate)
	r.GET("/reports/mine", read, endpoint.Mine)
}

// reportRange parses from/to query dates; to is inclusive through end
// of day.
func reportRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if v := c.Query("from"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, now.Location())
		if err != nil {
			return from, to, fmt.Errorf("invalid from date: %w", err)
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, now.Location())
		if err != nil {
			return from, to, fmt.Errorf("invalid to date: %w", err)
		}
		to = parsed.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}

func reportFilter(c *gin.Context) (reports.Filter, error) {
	from, to, err := reportRange(c)
	if err != nil {
		return reports.Filter{}, err
	}

	filter := reports.Filter{From: &from, To: &to}
	if userID := c.Query("userId"); userID != "" {
		filter.UserID = &userID
	}
	if departmentID := c.Query("departmentId"); departmentID != "" {
		filter.DepartmentID = &departmentID
	}
	return filter, nil
}

type ReportSearchParams struct {
	StartDate    *common.DateOnly `json:"startDate" binding:"required"`
	EndDate      *common.DateOnly `json:"endDate" binding:"required"`
	UserID       *string          `json:"userId"`
	DepartmentID *string          `json:"departmentId"`
}

// Search is the body-driven variant used by the dashboard grid.
func (ep *ReportEndpoint) Search(c *gin.Context) {
	var params ReportSearchParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	from := params.StartDate.Time
	to := params.EndDate.Time.Add(24*time.Hour - time.Second)
	filter := reports.Filter{
		From:         &from,
		To:           &to,
		UserID:       params.UserID,
		DepartmentID: params.DepartmentID,
	}

	records, err := reports.Records(ep.dm.DB(c.Request.Context()), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(records, int64(len(records))))
}

func (ep *ReportEndpoint) Records(c *gin.Context) {
	filter, err := reportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	records, err := reports.Records(ep.dm.DB(c.Request.Context()), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(records, int64(len(records))))
}

// Mine is the detailed report scoped to the caller regardless of role.
func (ep *ReportEndpoint) Mine(c *gin.Context) {
	filter, err := reportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	identity := middlewares.IdentityFrom(c)
	filter.UserID = &identity.UserID
	filter.DepartmentID = nil

	records, err := reports.Records(ep.dm.DB(c.Request.Context()), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(records, int64(len(records))))
}

func (ep *ReportEndpoint) Summary(c *gin.Context) {
	filter, err := reportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	summaries, err := reports.Summary(ep.dm.DB(c.Request.Context()), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(summaries))
}

func (ep *ReportEndpoint) Late(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	entries, err := reports.LateReport(ep.dm.DB(c.Request.Context()), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(entries))
}

func (ep *ReportEndpoint) Overtime(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	entries, err := reports.OvertimeReport(ep.dm.DB(c.Request.Context()), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(entries))
}

func (ep *ReportEndpoint) ExportRecords(c *gin.Context) {
	filter, err := reportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	records, err := reports.Records(ep.dm.DB(c.Request.Context()), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	file, err := reports.ExportRecords(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="registros.xlsx"`)
	c.Header("Content-Type", xlsxContentType)
	if err := file.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func (ep *ReportEndpoint) ExportLate(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	entries, err := reports.LateReport(ep.dm.DB(c.Request.Context()), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	file, err := reports.ExportLateEntries(entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="atrasos.xlsx"`)
	c.Header("Content-Type", xlsxContentType)
	if err := file.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
