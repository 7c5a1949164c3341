package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/kiosk"
	"github.com/rodrigoinhaia/DiinPonto/security"
	"github.com/rodrigoinhaia/DiinPonto/web/common"
	"github.com/rodrigoinhaia/DiinPonto/web/middlewares"
)

type AuthEndpoint struct {
	dm        *core.DatabaseManager
	jwtSecret []byte
	tokenTTL  time.Duration
}

func RegisterAuth(public, protected *gin.RouterGroup, dm *core.DatabaseManager, jwtSecret []byte, tokenTTL time.Duration) {
	endpoint := &AuthEndpoint{dm: dm, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
	public.POST("/auth/login", endpoint.Login)
	protected.GET("/auth/me", endpoint.Me)
	protected.POST("/auth/register",
		middlewares.RequirePermission(security.ActionCreate, security.ResourceUser),
		endpoint.Register)
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (ep *AuthEndpoint) Login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	db := ep.dm.DB(c.Request.Context())
	user, err := models.FindUserByEmail(db, dto.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)) != nil {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("invalid credentials"))
		return
	}

	token, err := security.CreateIdentityToken(security.IdentityOf(user), ep.jwtSecret, ep.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.SetCookie(middlewares.SessionCookie, token, int(ep.tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"token": token,
		"user":  user,
	}))
}

func (ep *AuthEndpoint) Me(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)

	db := ep.dm.DB(c.Request.Context())
	user, err := models.FindUserByID(db, identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("user not found"))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(user))
}

type RegisterDTO struct {
	Name         string      `json:"name" binding:"required"`
	Email        string      `json:"email" binding:"required,email"`
	Password     string      `json:"password" binding:"required,min=6"`
	Role         models.Role `json:"role"`
	EmployeeID   string      `json:"employeeId" binding:"required"`
	Barcode      string      `json:"barcode" binding:"required"`
	DepartmentID *string     `json:"departmentId"`
	Pin          *string     `json:"pin"`
}

func (ep *AuthEndpoint) Register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	if dto.Role == "" {
		dto.Role = models.RoleEmployee
	}
	if !dto.Role.Valid() {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("unknown role"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	user := &models.User{
		Name:         dto.Name,
		Email:        dto.Email,
		Password:     string(hashed),
		Role:         dto.Role,
		EmployeeID:   dto.EmployeeID,
		Barcode:      dto.Barcode,
		DepartmentID: dto.DepartmentID,
	}
	if dto.Pin != nil {
		pin, err := kiosk.HashPIN(*dto.Pin)
		if err != nil {
			abortWithError(c, err)
			return
		}
		user.Pin = &pin
	}

	db := ep.dm.DB(c.Request.Context())
	if err := db.Create(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(user))
}
