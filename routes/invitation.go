package routes

import (
	"log"
	"net/http"

	"onlyifyouknow-server/models"
	"onlyifyouknow-server/services"
	"onlyifyouknow-server/storage"
	"onlyifyouknow-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

type CreateInvitationInput struct {
	Email           string `json:"email" validate:"required,email"`
	InviteeName     string `json:"inviteeName" validate:"required,max=256"`
	InvitedType     string `json:"invitedType" validate:"required,oneof=user owner admin"`
	PersonalMessage string `json:"personalMessage" validate:"max=2000"`
}

// CreateInvitation issues a token and then attempts delivery. A failed email
// never fails the invitation; the caller learns about it via emailSent.
func CreateInvitation(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var input CreateInvitationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Only admins can invite admins
	if input.InvitedType == models.InvitationTypeAdmin && !models.IsAdminRole(userToken.Role) {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "only admins can invite admins")
		return
	}

	svc := invitationService()
	inv, err := svc.Create(input.Email, input.InviteeName, input.InvitedType, input.PersonalMessage, userToken.ID)
	if err != nil {
		utils.ServiceError(ctx, err)
		return
	}

	var inviter models.User
	storage.DB.Select("id, first_name, last_name").First(&inviter, userToken.ID)
	inviterName := inviter.FirstName + " " + inviter.LastName

	emailSent := true
	if mailErr := services.NewMailer().SendInvitation(inv, inviterName); mailErr != nil {
		log.Printf("invitation %d created but email failed: %v", inv.ID, mailErr)
		emailSent = false
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "invitation": inv, "emailSent": emailSent})
}

// ValidateInvitation checks a token without using it up.
func ValidateInvitation(ctx iris.Context) {
	token := ctx.URLParamDefault("token", "")
	if token == "" {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", "token required")
		return
	}

	result, err := invitationService().Validate(token)
	if err != nil {
		utils.ServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"valid": result.Valid, "reason": result.Reason})
}

type RespondInvitationInput struct {
	Token  string `json:"token" validate:"required"`
	Action string `json:"action" validate:"required,oneof=accept decline"`
}

// RespondInvitation accepts or declines a pending invitation. Account
// creation on accept happens separately through /api/user/register.
func RespondInvitation(ctx iris.Context) {
	var input RespondInvitationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	inv, err := invitationService().Respond(input.Token, input.Action)
	if err != nil {
		utils.ServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "status": inv.Status, "invitedType": inv.InvitedType})
}

// ListMyInvitations returns the caller's sent invitations.
func ListMyInvitations(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	invites, err := invitationService().ListByInviter(userToken.ID)
	if err != nil {
		utils.ServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "invitations": invites})
}

// CancelInvitation withdraws a pending invitation the caller sent.
func CancelInvitation(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	invitationID, err := ctx.Params().GetUint("invitationID")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	inv, svcErr := invitationService().Cancel(invitationID, userToken.ID)
	if svcErr != nil {
		utils.ServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(iris.Map{"success": true, "invitation": inv})
}
