package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/elchavez14/Valiacion-de-qr/routes"
	"github.com/elchavez14/Valiacion-de-qr/services"
	"github.com/elchavez14/Valiacion-de-qr/storage"
	"github.com/elchavez14/Valiacion-de-qr/utils"
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
	storage.InitializeMedia()

	routes.Orders = services.NewOrderLifecycle(storage.DB, services.SystemClock)

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

	// JWT verifiers
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
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/login", routes.Login)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
	}

	orders := app.Party("/api/orders", accessTokenVerifierMiddleware)
	{
		orders.Post("/", utils.AdminOnlyMiddleware, routes.CreateOrder)
		orders.Get("/", utils.UserIDFromTokenMiddleware, routes.ListOrders)
		orders.Get("/{id:uint}", utils.UserIDFromTokenMiddleware, routes.GetOrder)
		orders.Post("/{id:uint}/start", utils.TechnicianOnlyMiddleware, routes.StartOrder)
		orders.Post("/{id:uint}/fail", utils.TechnicianOnlyMiddleware, routes.FailOrder)
		orders.Post("/{id:uint}/succeed", utils.TechnicianOnlyMiddleware, routes.SucceedOrder)
		orders.Post("/{id:uint}/validate_token", utils.TechnicianOnlyMiddleware, routes.ValidateOrderToken)
		orders.Get("/{id:uint}/audit", utils.AdminOnlyMiddleware, routes.ListOrderAudit)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/technicians", routes.AdminListTechnicians)
		admin.Post("/technicians", routes.AdminCreateTechnician)
		admin.Patch("/technicians/{id:uint}", routes.AdminUpdateTechnician)
	}

	// Background sweeper for overdue orders
	sweepInterval := time.Minute
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			sweepInterval = parsed
		} else {
			log.Println("invalid SWEEP_INTERVAL, using 1m:", err)
		}
	}
	sweeper := services.NewSweeper(storage.DB, services.SystemClock, sweepInterval)
	go sweeper.Run(context.Background())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	app.Listen(":" + port)
}
