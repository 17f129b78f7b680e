package main

import (
	"fmt"
	"log"
	"os"

	"onlyifyouknow-server/routes"
	"onlyifyouknow-server/storage"
	"onlyifyouknow-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Routes
	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Get("/{id}", accessTokenVerifierMiddleware, routes.GetUser)
	}

	invitation := app.Party("/api/invitation")
	{
		invitation.Get("/validate", routes.ValidateInvitation)
		invitation.Post("/respond", routes.RespondInvitation)
		invitation.Post("/", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.CreateInvitation)
		invitation.Get("/", accessTokenVerifierMiddleware, routes.ListMyInvitations)
		invitation.Post("/{invitationID}/cancel", accessTokenVerifierMiddleware, routes.CancelInvitation)
	}

	property := app.Party("/api/property")
	{
		property.Get("/", routes.ListActiveProperties)
		property.Get("/{id}", routes.GetProperty)
		property.Post("/", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.CreateProperty)
		property.Get("/mine/list", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.GetMyProperties)
		property.Patch("/{id}", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.UpdateProperty)
		property.Post("/{id}/submit", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.SubmitPropertyForApproval)
	}

	trust := app.Party("/api/trust", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware)
	{
		trust.Post("/", routes.SetTrustLevel)
		trust.Get("/", routes.ListTrustLevels)
		trust.Delete("/{guestID}", routes.RemoveTrustLevel)
	}

	booking := app.Party("/api/booking", accessTokenVerifierMiddleware)
	{
		booking.Post("/quote", routes.QuoteBooking)
		booking.Post("/", routes.CreateBooking)
		booking.Get("/mine", routes.GetMyBookings)
		booking.Get("/owner", utils.OwnerOnlyMiddleware, routes.GetOwnerBookings)
		booking.Post("/{id}/cancel", routes.CancelBooking)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnlyMiddleware, routes.AdminChangeUserRole)
		admin.Get("/properties", routes.AdminListProperties)
		admin.Get("/properties/pending-enlistment", routes.AdminPendingEnlistment)
		admin.Get("/properties/{id:uint}", routes.AdminGetProperty)
		admin.Post("/properties/{id:uint}/approve", routes.AdminApproveProperty)
		admin.Post("/properties/{id:uint}/reject", routes.AdminRejectProperty)
		admin.Post("/properties/{id:uint}/enlist", routes.AdminEnlistProperty)
		admin.Get("/activity", routes.AdminActivity)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
