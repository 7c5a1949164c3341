package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/infrastructure/printer"
	"github.com/rodrigoinhaia/DiinPonto/security"
	"github.com/rodrigoinhaia/DiinPonto/web/common"
	"github.com/rodrigoinhaia/DiinPonto/web/middlewares"
)

type PrinterEndpoint struct {
	dm      *core.DatabaseManager
	cfg     printer.Config
	company printer.CompanyInfo
}

func RegisterPrinter(r *gin.RouterGroup, dm *core.DatabaseManager, cfg printer.Config, company printer.CompanyInfo) {
	endpoint := &PrinterEndpoint{dm: dm, cfg: cfg, company: company}

	create := middlewares.RequirePermission(security.ActionCreate, security.ResourcePrinter)
	r.POST("/printer/print", create, endpoint.Print)
	r.POST("/printer/test", create, endpoint.Test)
	r.POST("/printer/receipt", create, endpoint.Receipt)
}

type PrinterTargetDTO struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// target resolves the destination printer, letting the request
// override the configured one.
func (ep *PrinterEndpoint) target(dto PrinterTargetDTO) (printer.Config, error) {
	cfg := ep.cfg
	if dto.Address != "" {
		cfg.Address = dto.Address
	}
	if dto.Port != 0 {
		cfg.Port = dto.Port
	}
	if cfg.Address == "" {
		return cfg, printer.ErrNotConfigured
	}
	if err := printer.ValidateAddress(cfg.Address); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type PrintDTO struct {
	PrinterTargetDTO
	Text string `json:"text" binding:"required"`
}

// Print sends free text to the printer, wrapped with init and cut.
func (ep *PrinterEndpoint) Print(c *gin.Context) {
	var dto PrintDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	cfg, err := ep.target(dto.PrinterTargetDTO)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := printer.NewClient(cfg).Print(c.Request.Context(), printer.BuildTextCommand(dto.Text)); err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
}

func (ep *PrinterEndpoint) Test(c *gin.Context) {
	// An empty body means "use the configured printer".
	var dto PrinterTargetDTO
	if err := c.ShouldBindJSON(&dto); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	cfg, err := ep.target(dto)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := printer.NewClient(cfg).PrintTest(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
}

type PrintReceiptDTO struct {
	PrinterTargetDTO
	TimeRecordID string `json:"timeRecordId" binding:"required"`
}

// Receipt reprints the punch receipt for an existing record.
func (ep *PrinterEndpoint) Receipt(c *gin.Context) {
	var dto PrintReceiptDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	cfg, err := ep.target(dto.PrinterTargetDTO)
	if err != nil {
		abortWithError(c, err)
		return
	}

	db := ep.dm.DB(c.Request.Context())
	var record models.TimeRecord
	err = db.Preload("User").First(&record, "id = ?", dto.TimeRecordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Time record not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	// Employees may only reprint their own receipts.
	identity := middlewares.IdentityFrom(c)
	if identity.Role == models.RoleEmployee && record.UserID != identity.UserID {
		c.JSON(http.StatusForbidden, common.NewErrorResponse("insufficient permissions"))
		return
	}

	command := printer.BuildTimeRecordCommand(&record, ep.company)
	if err := printer.NewClient(cfg).Print(c.Request.Context(), command); err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
}
