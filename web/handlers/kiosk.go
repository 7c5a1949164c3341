package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/infrastructure/printer"
	"github.com/rodrigoinhaia/DiinPonto/kiosk"
	"github.com/rodrigoinhaia/DiinPonto/timeclock"
	"github.com/rodrigoinhaia/DiinPonto/web/common"
)

// KioskEndpoint serves the shared terminal. Its routes are
// unauthenticated; the badge or PIN is the credential.
type KioskEndpoint struct {
	dm      *core.DatabaseManager
	auth    *kiosk.Authenticator
	mode    timeclock.Mode
	printer *printer.Client
	company printer.CompanyInfo
}

func RegisterKiosk(r *gin.RouterGroup, dm *core.DatabaseManager, auth *kiosk.Authenticator, mode timeclock.Mode, client *printer.Client, company printer.CompanyInfo) {
	endpoint := &KioskEndpoint{dm: dm, auth: auth, mode: mode, printer: client, company: company}
	r.POST("/kiosk/auth", endpoint.Authenticate)
	r.POST("/time-record/kiosk", endpoint.Punch)
}

type KioskAuthDTO struct {
	Method  models.AuthMethod `json:"method" binding:"required"`
	Pin     string            `json:"pin"`
	Barcode string            `json:"barcode"`
}

// kioskUserDTO is the minimal identification the terminal displays.
type kioskUserDTO struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	EmployeeID     string            `json:"employeeId"`
	DepartmentName string            `json:"departmentName"`
	NextType       models.RecordType `json:"nextType"`
}

func (ep *KioskEndpoint) Authenticate(c *gin.Context) {
	var dto KioskAuthDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	db := ep.dm.DB(c.Request.Context())
	meta := kiosk.Attempt{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}

	var user *models.User
	var err error
	switch dto.Method {
	case models.AuthMethodPIN:
		user, err = ep.auth.ByPIN(db, dto.Pin, meta)
	case models.AuthMethodBarcode:
		user, err = ep.auth.ByBarcode(db, dto.Barcode, meta)
	default:
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("method must be PIN or BARCODE"))
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	next, err := timeclock.NextTypeFor(db, user.ID, ep.mode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(kioskUserDTO{
		ID:             user.ID,
		Name:           user.Name,
		EmployeeID:     user.EmployeeID,
		DepartmentName: departmentLabel(user),
		NextType:       next,
	}))
}

type KioskPunchDTO struct {
	UserID   string            `json:"userId"`
	Barcode  string            `json:"barcode"`
	Type     models.RecordType `json:"type"`
	Location *models.Location  `json:"location"`
	Device   string            `json:"device" binding:"required"`
}

// Punch registers a punch from the terminal. The user comes from the
// badge or from a previous /kiosk/auth; an omitted type auto-toggles to
// the next one in the cycle. A configured printer gets the receipt, but
// a printing failure never fails the committed punch.
func (ep *KioskEndpoint) Punch(c *gin.Context) {
	var dto KioskPunchDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	db := ep.dm.DB(c.Request.Context())
	meta := kiosk.Attempt{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}

	userID := dto.UserID
	if userID == "" {
		if dto.Barcode == "" {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("userId or barcode is required"))
			return
		}
		user, err := ep.auth.ByBarcode(db, dto.Barcode, meta)
		if err != nil {
			if errors.Is(err, kiosk.ErrNotFound) {
				c.JSON(http.StatusNotFound, common.NewErrorResponse("unknown badge"))
				return
			}
			abortWithError(c, err)
			return
		}
		userID = user.ID
	}

	punchType := dto.Type
	if punchType == "" {
		next, err := timeclock.NextTypeFor(db, userID, ep.mode)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
		punchType = next
	}

	record, err := timeclock.Record(db, timeclock.RecordOptions{
		UserID:   userID,
		Type:     punchType,
		Location: dto.Location,
		Device:   dto.Device,
		Mode:     ep.mode,
		Kiosk:    true,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	ep.printReceipt(record)

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"record": record,
		"user": kioskUserDTO{
			ID:             record.User.ID,
			Name:           record.User.Name,
			EmployeeID:     record.User.EmployeeID,
			DepartmentName: departmentLabel(&record.User),
		},
	}))
}

func (ep *KioskEndpoint) printReceipt(record *models.TimeRecord) {
	if ep.printer == nil || !ep.printer.Configured() {
		return
	}

	command := printer.BuildTimeRecordCommand(record, ep.company)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ep.printer.Print(ctx, command); err != nil {
		log.Printf("[WARN] failed to print punch receipt for record %s: %v", record.ID, err)
	}
}

func departmentLabel(user *models.User) string {
	if user.Department == nil {
		return "Sem departamento"
	}
	return user.Department.Name
}
