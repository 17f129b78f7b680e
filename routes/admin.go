package routes

import (
	"net/http"
	"strings"

	"onlyifyouknow-server/models"
	"onlyifyouknow-server/storage"
	"onlyifyouknow-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /admin/users
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	role := ctx.URLParamDefault("role", "")
	search := strings.TrimSpace(ctx.URLParamDefault("search", ""))

	q := storage.DB.Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}

	var total int64
	q.Count(&total)

	var users []models.User
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// PATCH /admin/users/:id/role {role} — super admin only
func AdminChangeUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "role required")
		return
	}
	switch body.Role {
	case models.RoleUser, models.RoleOwner, models.RoleAdmin, models.RoleSuperAdmin:
	default:
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "unknown role")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "user not found")
		return
	}
	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.Audit(ctx, "user.role_change", "user", user.ID, before, user)
	ctx.JSON(iris.Map{"data": &user})
}

// GET /admin/activity — paged audit trail, newest first
func AdminActivity(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 50)
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	resourceType := ctx.URLParamDefault("resource_type", "")
	action := ctx.URLParamDefault("action", "")

	q := storage.DB.Model(&models.AuditLog{})
	if resourceType != "" {
		q = q.Where("resource_type = ?", resourceType)
	}
	if action != "" {
		q = q.Where("action = ?", action)
	}

	var total int64
	q.Count(&total)

	var entries []models.AuditLog
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&entries).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, entries, page, perPage, total)
}
