package utils

import (
	"net/http"

	"onlyifyouknow-server/services"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StopWithJSON(statusCode, iris.Map{
		"status": statusCode,
		"title":  title,
		"detail": detail,
	})
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(
		iris.StatusInternalServerError,
		"Internal Server Error",
		"An unexpected error occurred.",
		ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "Resource not found.", ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(iris.StatusConflict, "Conflict", "Email already registered.", ctx)
}

func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		validationErrors := make([]iris.Map, 0, len(errs))
		for _, validationErr := range errs {
			validationErrors = append(validationErrors, iris.Map{
				"field": validationErr.Field(),
				"tag":   validationErr.Tag(),
				"value": validationErr.Param(),
			})
		}
		CreateValidationError(ctx, validationErrors)
		return
	}
	CreateError(iris.StatusBadRequest, "Bad Request", err.Error(), ctx)
}

func CreateValidationError(ctx iris.Context, errs []iris.Map) {
	ctx.StopWithJSON(iris.StatusUnprocessableEntity, iris.Map{
		"status": iris.StatusUnprocessableEntity,
		"title":  "Validation Error",
		"errors": errs,
	})
}

// ServiceError maps a typed service failure onto an HTTP response. Retryable
// failures carry a "retryable" flag so the client can offer a retry.
func ServiceError(ctx iris.Context, err error) {
	code := services.ErrCode(err)
	status := http.StatusInternalServerError
	if code == "" {
		code = "server_error"
	}
	switch code {
	case services.CodeValidation:
		status = http.StatusUnprocessableEntity
	case services.CodeAuthorization:
		status = http.StatusForbidden
	case services.CodeInvalidState:
		status = http.StatusConflict
	case services.CodeNotFound:
		status = http.StatusNotFound
	case services.CodeConflict:
		status = http.StatusConflict
	case services.CodeProvider, services.CodeTransient:
		status = http.StatusBadGateway
	}
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{
		"error":     code,
		"message":   err.Error(),
		"retryable": services.IsRetryable(err),
	})
}
