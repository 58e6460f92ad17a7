package main

import (
	"context"

	"github.com/peaceghost-hub/EasyAccomodation/config"
	"github.com/peaceghost-hub/EasyAccomodation/routes"
	"github.com/peaceghost-hub/EasyAccomodation/storage"
	"github.com/peaceghost-hub/EasyAccomodation/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	config.Load()

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()
	routes.InitializeServices()

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

	app.Use(iris.Compression)

	// JWT Verifiers
	emailTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(config.C.EmailTokenSecret))
	emailTokenVerifier.WithDefaultBlocklist()
	emailTokenVerifierMiddleware := emailTokenVerifier.Verify(func() interface{} {
		return new(utils.EmailVerificationToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(config.C.AccessTokenSecret))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(config.C.RefreshTokenSecret))
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
		user.Post("/logout", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.Logout)
		user.Post("/verify-email", emailTokenVerifierMiddleware, routes.VerifyEmail)
		user.Post("/verify-email/resend", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.ResendVerificationEmail)
		user.Get("/access", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetAccessStatus)
		user.Get("/profile", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetProfileStatus)
		user.Get("/{id}/houses/saved", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.GetUserSavedHouses)
		user.Patch("/{id}/houses/saved", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterUserSavedHouses)
		user.Patch("/payment-info", accessTokenVerifierMiddleware, utils.HouseOwnerOnlyMiddleware, routes.UpdateOwnerPaymentInfo)
		user.Get("/payments", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMyPayments)
		user.Get("/notifications", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMyNotifications)
		user.Patch("/notifications/{id:uint}/read", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.MarkNotificationRead)
	}

	area := app.Party("/api/areas")
	{
		area.Get("/", routes.GetResidentialAreas)
	}

	house := app.Party("/api/houses")
	{
		house.Get("/", routes.GetHouses)
		house.Get("/{id:uint}", routes.GetHouseByID)
		house.Post("/", accessTokenVerifierMiddleware, utils.HouseOwnerOnlyMiddleware, routes.CreateHouse)
		house.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.HouseOwnerOnlyMiddleware, routes.UpdateHouse)
		house.Post("/{id:uint}/rooms", accessTokenVerifierMiddleware, utils.HouseOwnerOnlyMiddleware, routes.AddRoom)
		house.Post("/{id:uint}/claim", accessTokenVerifierMiddleware, utils.HouseOwnerOnlyMiddleware, routes.ClaimHouse)
		house.Get("/mine/list", accessTokenVerifierMiddleware, utils.HouseOwnerOnlyMiddleware, routes.GetMyHouses)
		house.Get("/{id:uint}/bookings", accessTokenVerifierMiddleware, utils.HouseOwnerOnlyMiddleware, routes.GetHouseBookings)
		house.Get("/{id:uint}/inquiries", accessTokenVerifierMiddleware, utils.HouseOwnerOnlyMiddleware, routes.GetHouseInquiries)
	}

	booking := app.Party("/api/bookings")
	{
		booking.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateBooking)
		booking.Get("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMyBookings)
		booking.Post("/{id:uint}/confirm", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.ConfirmBooking)
		booking.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CancelBooking)
	}

	inquiry := app.Party("/api/inquiries")
	{
		inquiry.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateInquiry)
		inquiry.Get("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMyInquiries)
		inquiry.Patch("/{id:uint}/verify", accessTokenVerifierMiddleware, utils.HouseOwnerOnlyMiddleware, routes.VerifyInquiry)
		inquiry.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CancelInquiry)
	}

	proof := app.Party("/api/proofs")
	{
		proof.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UploadPaymentProof)
		proof.Get("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMyPaymentProofs)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Post("/areas", routes.AdminCreateArea)
		admin.Patch("/houses/{id:uint}/verify", routes.AdminVerifyHouse)
		admin.Get("/houses/{id:uint}/delete-impact", routes.AdminPreviewHouseDelete)
		admin.Delete("/houses/{id:uint}", routes.AdminDeleteHouse)
		admin.Get("/proofs", routes.AdminListProofs)
		admin.Patch("/proofs/{id:uint}", routes.AdminReviewProof)
		admin.Get("/students", routes.AdminListStudents)
		admin.Patch("/students/{id:uint}/verification", routes.AdminToggleVerification)
		admin.Get("/bookings", routes.AdminListBookings)
		admin.Get("/payments", routes.AdminListPayments)
		admin.Post("/bookings/sweep", routes.AdminSweepExpiredBookings)
		admin.Get("/audits", routes.AdminListAudits)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Background sweep for expired holds
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go routes.Sweeper().Run(sweepCtx)

	app.Listen(":" + config.C.Port)
}
