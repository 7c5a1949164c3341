package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/correction"
	"github.com/rodrigoinhaia/DiinPonto/security"
	"github.com/rodrigoinhaia/DiinPonto/web/common"
	"github.com/rodrigoinhaia/DiinPonto/web/middlewares"
)

type CorrectionEndpoint struct {
	dm *core.DatabaseManager
}

func RegisterCorrections(r *gin.RouterGroup, dm *core.DatabaseManager) {
	endpoint := &CorrectionEndpoint{dm: dm}

	create := middlewares.RequirePermission(security.ActionCreate, security.ResourceCorrection)
	read := middlewares.RequirePermission(security.ActionRead, security.ResourceCorrection)
	decide := middlewares.RequirePermission(security.ActionUpdate, security.ResourceCorrection)
	remove := middlewares.RequirePermission(security.ActionDelete, security.ResourceCorrection)
	r.POST("/time-record/correction", create, endpoint.Create)
	r.GET("/corrections", read, endpoint.List)
	r.GET("/corrections/:id", read, endpoint.Find)
	r.PUT("/corrections/:id", decide, endpoint.Decide)
	r.DELETE("/corrections/:id", remove, endpoint.Delete)
}

type CorrectionCreateDTO struct {
	TimeRecordID string                `json:"timeRecordId" binding:"required"`
	NewTimestamp *common.LocalDateTime `json:"newTimestamp"`
	Reason       string                `json:"reason" binding:"required"`
	Evidence     *string               `json:"evidence"`
}

func (ep *CorrectionEndpoint) Create(c *gin.Context) {
	var dto CorrectionCreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	identity := middlewares.IdentityFrom(c)
	db := ep.dm.DB(c.Request.Context())

	var newTimestamp *time.Time
	if dto.NewTimestamp != nil && !dto.NewTimestamp.IsZero() {
		newTimestamp = &dto.NewTimestamp.Time
	}

	request, err := correction.Request(db, correction.RequestOptions{
		RequesterID:  identity.UserID,
		TimeRecordID: dto.TimeRecordID,
		Reason:       dto.Reason,
		Evidence:     dto.Evidence,
		NewTimestamp: newTimestamp,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(request))
}

func (ep *CorrectionEndpoint) List(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	db := ep.dm.DB(c.Request.Context())

	filters := correction.ListFilters{}
	if status := c.Query("status"); status != "" {
		s := models.CorrectionStatus(status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("unknown status"))
			return
		}
		filters.Status = &s
	}
	if userID := c.Query("userId"); userID != "" {
		filters.UserID = &userID
	}

	requests, err := correction.List(db, identity.UserID, filters)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(requests, int64(len(requests))))
}

func (ep *CorrectionEndpoint) Find(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	db := ep.dm.DB(c.Request.Context())

	request, err := correction.FindFor(db, identity.UserID, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(request))
}

type CorrectionDecisionDTO struct {
	Status          models.CorrectionStatus `json:"status" binding:"required"`
	RejectionReason *string                 `json:"rejectionReason"`
}

func (ep *CorrectionEndpoint) Decide(c *gin.Context) {
	var dto CorrectionDecisionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	identity := middlewares.IdentityFrom(c)
	db := ep.dm.DB(c.Request.Context())

	request, err := correction.Decide(db, c.Param("id"), identity.UserID, dto.Status, dto.RejectionReason)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(request))
}

func (ep *CorrectionEndpoint) Delete(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	db := ep.dm.DB(c.Request.Context())

	if err := correction.Delete(db, identity.UserID, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
}
