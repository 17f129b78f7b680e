package routes

import (
	"encoding/json"
	"net/http"

	"onlyifyouknow-server/models"
	"onlyifyouknow-server/storage"
	"onlyifyouknow-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

type CreatePropertyInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description" validate:"max=10000"`
	AddressLine1 string   `json:"addressLine1" validate:"required,max=512"`
	AddressLine2 string   `json:"addressLine2" validate:"max=512"`
	City         string   `json:"city" validate:"required,max=256"`
	State        string   `json:"state" validate:"max=256"`
	Zip          string   `json:"zip" validate:"max=32"`
	Country      string   `json:"country" validate:"required,max=256"`
	Lat          float32  `json:"lat"`
	Lng          float32  `json:"lng"`
	Capacity     int      `json:"capacity" validate:"required,gte=1,lte=32"`
	Bedrooms     int      `json:"bedrooms" validate:"gte=0"`
	Beds         int      `json:"beds" validate:"gte=0"`
	Bathrooms    float32  `json:"bathrooms" validate:"gte=0"`
	NightlyPrice float32  `json:"nightlyPrice" validate:"required,gt=0"`
	Currency     string   `json:"currency" validate:"required,len=3"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
}

// CreateProperty creates a draft listing owned by the caller.
func CreateProperty(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var input CreatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Ensure arrays are never null
	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	images := input.Images
	if images == nil {
		images = []string{}
	}
	imagesJSON, _ := json.Marshal(images)

	property := models.Property{
		OwnerID:      userToken.ID,
		Title:        input.Title,
		Description:  input.Description,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		Zip:          input.Zip,
		Country:      input.Country,
		Lat:          input.Lat,
		Lng:          input.Lng,
		Capacity:     input.Capacity,
		Bedrooms:     input.Bedrooms,
		Beds:         input.Beds,
		Bathrooms:    input.Bathrooms,
		NightlyPrice: input.NightlyPrice,
		Currency:     input.Currency,
		Amenities:    string(amenitiesJSON),
		Images:       string(imagesJSON),
		Status:       models.PropertyStatusDraft,
	}

	if err := storage.DB.Create(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "property": &property})
}

// GetProperty returns a single listing.
func GetProperty(ctx iris.Context) {
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
	ctx.JSON(iris.Map{"success": true, "property": &prop})
}

// GetMyProperties returns the caller's listings, all statuses.
func GetMyProperties(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var props []models.Property
	storage.DB.Where("owner_id = ?", userToken.ID).Order("created_at DESC").Find(&props)
	ctx.JSON(iris.Map{"success": true, "properties": props})
}

type UpdatePropertyInput struct {
	Title        string   `json:"title" validate:"max=256"`
	Description  string   `json:"description" validate:"max=10000"`
	NightlyPrice float32  `json:"nightlyPrice" validate:"gte=0"`
	Capacity     int      `json:"capacity" validate:"gte=0,lte=32"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
}

// UpdateProperty edits a listing. Only drafts are editable; anything later in
// the lifecycle is frozen for review or already live on the provider.
func UpdateProperty(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var prop models.Property
	if err := storage.DB.First(&prop, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}
	if prop.OwnerID != userToken.ID {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "not your property")
		return
	}
	if prop.Status != models.PropertyStatusDraft {
		utils.JSONError(ctx, http.StatusConflict, "invalid_state", "only draft properties can be edited")
		return
	}

	var input UpdatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Title != "" {
		prop.Title = input.Title
	}
	if input.Description != "" {
		prop.Description = input.Description
	}
	if input.NightlyPrice > 0 {
		prop.NightlyPrice = input.NightlyPrice
	}
	if input.Capacity > 0 {
		prop.Capacity = input.Capacity
	}
	if input.Amenities != nil {
		amenitiesJSON, _ := json.Marshal(input.Amenities)
		prop.Amenities = string(amenitiesJSON)
	}
	if input.Images != nil {
		imagesJSON, _ := json.Marshal(input.Images)
		prop.Images = string(imagesJSON)
	}

	if err := storage.DB.Save(&prop).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "property": &prop})
}

// SubmitPropertyForApproval moves a draft into the admin review queue.
func SubmitPropertyForApproval(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	prop, svcErr := lifecycleService().SubmitForApproval(id, userToken.ID)
	if svcErr != nil {
		utils.ServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(iris.Map{"success": true, "property": prop})
}

// ListActiveProperties is the guest-facing listing feed: active only.
func ListActiveProperties(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.Property{}).Where("status = ?", models.PropertyStatusActive)

	var total int64
	q.Count(&total)

	var props []models.Property
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&props).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, props, page, perPage, total)
}
