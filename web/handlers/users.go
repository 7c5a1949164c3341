package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/kiosk"
	"github.com/rodrigoinhaia/DiinPonto/security"
	"github.com/rodrigoinhaia/DiinPonto/web/common"
	"github.com/rodrigoinhaia/DiinPonto/web/middlewares"
)

type UserEndpoint struct {
	dm *core.DatabaseManager
}

func RegisterUsers(r *gin.RouterGroup, dm *core.DatabaseManager) {
	endpoint := &UserEndpoint{dm: dm}

	manage := middlewares.RequirePermission(security.ActionManage, security.ResourceUser)
	r.GET("/users", middlewares.RequirePermission(security.ActionRead, security.ResourceUser), endpoint.Search)
	r.GET("/users/:id", middlewares.RequirePermission(security.ActionRead, security.ResourceUser), endpoint.Find)
	r.PUT("/users/:id", manage, endpoint.Update)
	r.PUT("/users/:id/reset-pin", manage, endpoint.ResetPin)
	r.DELETE("/users/:id", manage, endpoint.Delete)
}

func (ep *UserEndpoint) Search(c *gin.Context) {
	db := ep.dm.DB(c.Request.Context())

	q := db.Model(&models.User{}).Preload("Department").Order("name asc")
	if departmentID := c.Query("departmentId"); departmentID != "" {
		q = q.Where("department_id = ?", departmentID)
	}
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(users, total))
}

func (ep *UserEndpoint) Find(c *gin.Context) {
	db := ep.dm.DB(c.Request.Context())

	user, err := models.FindUserByID(db, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("User not found"))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(user))
}

type UserUpdateDTO struct {
	Name         *string      `json:"name,omitempty"`
	Email        *string      `json:"email,omitempty" binding:"omitempty,email"`
	Role         *models.Role `json:"role,omitempty"`
	Barcode      *string      `json:"barcode,omitempty"`
	DepartmentID *string      `json:"departmentId,omitempty"`
	ManagerID    *string      `json:"managerId,omitempty"`
}

func (ep *UserEndpoint) Update(c *gin.Context) {
	var dto UserUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}
	if dto.Role != nil && !dto.Role.Valid() {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("unknown role"))
		return
	}

	db := ep.dm.DB(c.Request.Context())
	id := c.Param("id")

	user, err := models.FindUserByID(db, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("User not found"))
		return
	}

	if err := db.Model(&models.User{}).Where("id = ?", id).Updates(dto).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	updated, err := models.FindUserByID(db, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(updated))
}

type SetPinDTO struct {
	Pin string `json:"pin" binding:"required"`
}

func (ep *UserEndpoint) ResetPin(c *gin.Context) {
	var dto SetPinDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	hashed, err := kiosk.HashPIN(dto.Pin)
	if err != nil {
		abortWithError(c, err)
		return
	}

	db := ep.dm.DB(c.Request.Context())
	res := db.Model(&models.User{}).Where("id = ?", c.Param("id")).Update("pin", hashed)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(res.Error.Error()))
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("User not found"))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
}

func (ep *UserEndpoint) Delete(c *gin.Context) {
	db := ep.dm.DB(c.Request.Context())
	id := c.Param("id")

	// Punches and correction requests are a legal record; a user
	// referenced by either cannot be removed.
	var punches int64
	if err := db.Model(&models.TimeRecord{}).Where("user_id = ?", id).Count(&punches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if punches > 0 {
		c.JSON(http.StatusConflict, common.NewErrorResponse("User has time records and cannot be deleted"))
		return
	}

	var corrections int64
	if err := db.Model(&models.CorrectionRequest{}).
		Where("requested_by_id = ? OR approved_by_id = ?", id, id).
		Count(&corrections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if corrections > 0 {
		c.JSON(http.StatusConflict, common.NewErrorResponse("User is referenced by correction requests and cannot be deleted"))
		return
	}

	var managed int64
	if err := db.Model(&models.Department{}).Where("manager_id = ?", id).Count(&managed).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if managed > 0 {
		c.JSON(http.StatusConflict, common.NewErrorResponse("User manages a department and cannot be deleted"))
		return
	}

	removed, err := deleteUserCascade(db, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if removed == 0 {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("User not found"))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
}

// deleteUserCascade removes the user row together with the rows that
// exist only for that user: their work schedule and their kiosk audit
// rows. Subordinates are detached rather than removed.
func deleteUserCascade(db *gorm.DB, id string) (int64, error) {
	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.WorkSchedule{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.KioskAuthLog{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("manager_id = ?", id).
			Update("manager_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}
