package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dmarques/users-api/internal/application"
	"github.com/dmarques/users-api/internal/domain/entity"
	"github.com/dmarques/users-api/pkg/helpers"
	"github.com/dmarques/users-api/pkg/response"
	"github.com/dmarques/users-api/pkg/validation"
)

// UserHandler exposes user CRUD over HTTP.
type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type updateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// List GET /users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.GetAll(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}
	out := make([]application.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, application.NewUserDTO(u))
	}
	response.Success(c, http.StatusOK, out, "users", map[string]any{"count": len(out)})
}

// Get GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err)
		return
	}
	if u == nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, application.NewUserDTO(u), "user", nil)
}

// Create POST /users (public registration)
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	c.Header("Location", "/api/users/"+u.ID)
	response.Success(c, http.StatusCreated, application.NewUserDTO(u), "user created", nil)
}

// Update PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.Name, req.Email)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	if u == nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, application.NewUserDTO(u), "user updated", nil)
}

// ChangePassword PUT /users/:id/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.ChangePassword(c.Request.Context(), c.Param("id"), req.NewPassword)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	if u == nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password updated", nil)
}

// Delete DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	ok, err := h.Svc.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err)
		return
	}
	if !ok {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search GET /users/search?q=...&size=...
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// mutationError maps create/update failures: business-rule and validation
// errors are client errors, anything else is a storage failure.
func (h *UserHandler) mutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusBadRequest, "email already registered", nil)
	case errors.Is(err, entity.ErrEmptyName),
		errors.Is(err, entity.ErrEmptyEmail),
		errors.Is(err, entity.ErrEmptyPassword),
		errors.Is(err, helpers.ErrPasswordTooLong):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	default:
		h.storeError(c, err)
	}
}

func (h *UserHandler) storeError(c *gin.Context, err error) {
	if h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("storage failure")
	}
	response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
}
