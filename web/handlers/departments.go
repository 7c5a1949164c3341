package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/security"
	"github.com/rodrigoinhaia/DiinPonto/web/common"
	"github.com/rodrigoinhaia/DiinPonto/web/middlewares"
)

type DepartmentEndpoint struct {
	dm *core.DatabaseManager
}

func RegisterDepartments(r *gin.RouterGroup, dm *core.DatabaseManager) {
	endpoint := &DepartmentEndpoint{dm: dm}

	read := middlewares.RequirePermission(security.ActionRead, security.ResourceDepartment)
	manage := middlewares.RequirePermission(security.ActionManage, security.ResourceDepartment)
	r.GET("/departments", read, endpoint.Search)
	r.GET("/departments/:id", read, endpoint.Find)
	r.POST("/departments", manage, endpoint.Create)
	r.PUT("/departments/:id", manage, endpoint.Update)
	r.DELETE("/departments/:id", manage, endpoint.Delete)
}

func (ep *DepartmentEndpoint) Search(c *gin.Context) {
	db := ep.dm.DB(c.Request.Context())

	var departments []models.Department
	if err := db.Preload("Manager").Order("name asc").Find(&departments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(departments, int64(len(departments))))
}

func (ep *DepartmentEndpoint) Find(c *gin.Context) {
	db := ep.dm.DB(c.Request.Context())

	var department models.Department
	if err := db.Preload("Manager").Preload("Users").First(&department, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Department not found"))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(department))
}

type DepartmentDTO struct {
	Name      string  `json:"name" binding:"required"`
	ManagerID *string `json:"managerId"`
}

func (ep *DepartmentEndpoint) Create(c *gin.Context) {
	var dto DepartmentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	db := ep.dm.DB(c.Request.Context())

	if dto.ManagerID != nil {
		manager, err := models.FindUserByID(db, *dto.ManagerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
		if manager == nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Manager not found"))
			return
		}
	}

	department := &models.Department{Name: dto.Name, ManagerID: dto.ManagerID}
	if err := db.Create(department).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(department))
}

type DepartmentUpdateDTO struct {
	Name      *string `json:"name,omitempty"`
	ManagerID *string `json:"managerId,omitempty"`
}

func (ep *DepartmentEndpoint) Update(c *gin.Context) {
	var dto DepartmentUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	db := ep.dm.DB(c.Request.Context())
	id := c.Param("id")

	res := db.Model(&models.Department{}).Where("id = ?", id).Updates(dto)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(res.Error.Error()))
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Department not found"))
		return
	}

	var department models.Department
	if err := db.Preload("Manager").First(&department, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(department))
}

func (ep *DepartmentEndpoint) Delete(c *gin.Context) {
	db := ep.dm.DB(c.Request.Context())
	id := c.Param("id")

	// Members must be moved out first.
	var members int64
	if err := db.Model(&models.User{}).Where("department_id = ?", id).Count(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if members > 0 {
		c.JSON(http.StatusConflict, common.NewErrorResponse("Department still has members"))
		return
	}

	res := db.Delete(&models.Department{}, "id = ?", id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(res.Error.Error()))
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Department not found"))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
}
