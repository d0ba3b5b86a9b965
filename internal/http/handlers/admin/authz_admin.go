package admin

import (
	"github.com/velo-shop/internal/authz"
	"github.com/velo-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RoleRequest 角色创建请求
type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// PolicyRequest 策略授予 / 撤销请求
type PolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// AdminRolesRequest 管理员角色设置请求
type AdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 当前管理员的角色与策略
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "roles fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": c.GetBool("admin_is_super"),
		"roles":    roles,
	})
}

// ListRoles 角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "roles fetch failed", err)
		return
	}
	response.Success(c, gin.H{"roles": roles})
}

// CreateRole 创建角色
func (h *Handler) CreateRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "role create failed", err)
		return
	}
	response.Success(c, gin.H{"role": role})
}

// DeleteRole 删除角色及其策略
func (h *Handler) DeleteRole(c *gin.Context) {
	role := c.Param("role")
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondError(c, response.CodeBadRequest, "role delete failed", err)
		return
	}
	response.SuccessWithMsg(c, "role deleted", nil)
}

// GetRolePolicies 角色策略列表
func (h *Handler) GetRolePolicies(c *gin.Context) {
	role := c.Param("role")
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "policies fetch failed", err)
		return
	}
	if policies == nil {
		policies = []authz.Policy{}
	}
	response.Success(c, gin.H{"policies": policies})
}

// GrantPolicy 授予角色策略
func (h *Handler) GrantPolicy(c *gin.Context) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "policy grant failed", err)
		return
	}
	response.SuccessWithMsg(c, "policy granted", nil)
}

// RevokePolicy 撤销角色策略
func (h *Handler) RevokePolicy(c *gin.Context) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "policy revoke failed", err)
		return
	}
	response.SuccessWithMsg(c, "policy revoked", nil)
}

// GetAdminRoles 管理员的角色列表
func (h *Handler) GetAdminRoles(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "roles fetch failed", err)
		return
	}
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}

// SetAdminRoles 覆盖管理员的角色
func (h *Handler) SetAdminRoles(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req AdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(id, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "roles set failed", err)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "roles fetch failed", err)
		return
	}
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}
