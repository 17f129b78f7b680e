package routes

import (
	"net/http"
	"strings"
	"time"

	"onlyifyouknow-server/models"
	"onlyifyouknow-server/storage"
	"onlyifyouknow-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /admin/properties
func AdminListProperties(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := ctx.URLParamDefault("status", "")
	search := strings.TrimSpace(ctx.URLParamDefault("search", ""))
	ownerID := ctx.URLParamDefault("owner_id", "")
	createdFrom := ctx.URLParamDefault("created_from", "")
	createdTo := ctx.URLParamDefault("created_to", "")

	q := storage.DB.Model(&models.Property{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(title) LIKE ? OR lower(description) LIKE ? OR lower(city) LIKE ?", like, like, like)
	}
	if createdFrom != "" {
		if t, err := time.Parse(time.RFC3339, createdFrom); err == nil {
			q = q.Where("created_at >= ?", t)
		}
	}
	if createdTo != "" {
		if t, err := time.Parse(time.RFC3339, createdTo); err == nil {
			q = q.Where("created_at <= ?", t)
		}
	}

	var total int64
	q.Count(&total)

	var props []models.Property
	if err := q.Preload("Owner").Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&props).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, props, page, perPage, total)
}

// GET /admin/properties/:id
func AdminGetProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var prop models.Property
	if err := storage.DB.Preload("Owner").First(&prop, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}
	ctx.JSON(iris.Map{"data": &prop, "meta": iris.Map{}, "links": iris.Map{}})
}

// GET /admin/properties/pending-enlistment
// Oldest approval first so the queue is processed fairly.
func AdminPendingEnlistment(ctx iris.Context) {
	props, err := lifecycleService().ListPendingEnlistment()
	if err != nil {
		utils.ServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": props, "meta": iris.Map{"count": len(props)}})
}

type ReviewPropertyInput struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// POST /admin/properties/:id/approve {notes}
func AdminApproveProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	adminID, _ := ctx.Values().Get("userID").(uint)

	var body ReviewPropertyInput
	if err := ctx.ReadJSON(&body); err != nil && ctx.GetContentLength() > 0 {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	prop, svcErr := lifecycleService().Approve(id, adminID, body.Notes)
	if svcErr != nil {
		utils.ServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(iris.Map{"data": prop})
}

// POST /admin/properties/:id/reject {notes}
func AdminRejectProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	adminID, _ := ctx.Values().Get("userID").(uint)

	var body ReviewPropertyInput
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	prop, svcErr := lifecycleService().Reject(id, adminID, body.Notes)
	if svcErr != nil {
		utils.ServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(iris.Map{"data": prop})
}

// POST /admin/properties/:id/enlist
// Registers the property with the booking provider and activates it.
func AdminEnlistProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	adminID, _ := ctx.Values().Get("userID").(uint)

	prop, svcErr := lifecycleService().EnlistToProvider(ctx.Request().Context(), id, adminID)
	if svcErr != nil {
		utils.ServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(iris.Map{"data": prop})
}
