package admin

import (
	"strconv"

	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/repository"
	"github.com/velo-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// UserStatusRequest 用户状态变更请求
type UserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var userAdminErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "user not found"},
	{target: service.ErrUserStatusInvalid, code: response.CodeBadRequest, msg: "user status invalid"},
}

// ListUsers 后台用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	users, total, err := h.UserAdminService.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "users fetch failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// GetUser 后台用户详情
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	user, err := h.UserAdminService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, userAdminErrorRules, response.CodeInternal, "user fetch failed")
		return
	}
	response.Success(c, user)
}

// SetUserStatus 启用 / 禁用用户
func (h *Handler) SetUserStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	user, err := h.UserAdminService.SetStatus(id, req.Status)
	if err != nil {
		respondWithMappedError(c, err, userAdminErrorRules, response.CodeInternal, "user status update failed")
		return
	}
	response.Success(c, user)
}
