package routes

import (
	"net/http"

	"onlyifyouknow-server/models"
	"onlyifyouknow-server/storage"
	"onlyifyouknow-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// Discount ceiling per tier. Owners pick a level; the discount percent may
// be anything up to the tier's cap.
var trustLevelMaxDiscount = map[int]float32{
	1: 10,
	2: 25,
	3: 50,
}

type SetTrustLevelInput struct {
	GuestID         uint    `json:"guestID" validate:"required"`
	Level           int     `json:"level" validate:"required,gte=1,lte=3"`
	DiscountPercent float32 `json:"discountPercent" validate:"gte=0,lte=50"`
}

// SetTrustLevel creates or updates the caller's trust tier for a guest.
func SetTrustLevel(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var input SetTrustLevelInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if max := trustLevelMaxDiscount[input.Level]; input.DiscountPercent > max {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "discount exceeds the cap for this level")
		return
	}
	if input.GuestID == userToken.ID {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "cannot assign a trust level to yourself")
		return
	}

	var guest models.User
	if err := storage.DB.First(&guest, input.GuestID).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "guest not found")
		return
	}

	var tl models.TrustLevel
	found := storage.DB.Where("owner_id = ? AND guest_id = ?", userToken.ID, input.GuestID).First(&tl)
	if found.Error != nil {
		tl = models.TrustLevel{
			OwnerID:         userToken.ID,
			GuestID:         input.GuestID,
			Level:           input.Level,
			DiscountPercent: input.DiscountPercent,
		}
		if err := storage.DB.Create(&tl).Error; err != nil {
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		utils.Audit(ctx, "trust_level.create", "trust_level", tl.ID, nil, tl)
	} else {
		before := tl
		tl.Level = input.Level
		tl.DiscountPercent = input.DiscountPercent
		if err := storage.DB.Save(&tl).Error; err != nil {
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		utils.Audit(ctx, "trust_level.update", "trust_level", tl.ID, before, tl)
	}

	ctx.JSON(iris.Map{"success": true, "trustLevel": tl})
}

// ListTrustLevels returns the caller's assigned tiers.
func ListTrustLevels(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var levels []models.TrustLevel
	storage.DB.Where("owner_id = ?", userToken.ID).Preload("Guest").Order("level DESC").Find(&levels)
	ctx.JSON(iris.Map{"success": true, "trustLevels": levels})
}

// RemoveTrustLevel deletes a tier; the guest books at full price afterwards.
func RemoveTrustLevel(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	guestID, err := ctx.Params().GetUint("guestID")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var tl models.TrustLevel
	if err := storage.DB.Where("owner_id = ? AND guest_id = ?", userToken.ID, guestID).First(&tl).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "trust level not found")
		return
	}

	if err := storage.DB.Delete(&tl).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.Audit(ctx, "trust_level.remove", "trust_level", tl.ID, tl, nil)
	ctx.JSON(iris.Map{"success": true})
}
