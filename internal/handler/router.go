package handler

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/middleware"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/view"
)

type Handlers struct {
	Auth    *AuthHandler
	Meals   *MealHandler
	Orders  *OrderHandler
	Account *AccountHandler
	Chef    *ChefHandler
	Admin   *AdminHandler
	Theme   *ThemeHandler
	Session *SessionHandler
	Health  *HealthHandler
}

type RouterDeps struct {
	Handlers
	Render    *Renderer
	Sessions  *middleware.Sessions
	Roles     *middleware.Roles
	Templates *template.Template
	// Middleware runs before the session is loaded (request log, metrics).
	Middleware     []gin.HandlerFunc
	AllowedOrigins []string
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(d.Middleware...)
	router.SetHTMLTemplate(d.Templates)
	router.StaticFS("/static", http.FS(view.Static()))

	if d.Health != nil {
		router.GET("/healthz", d.Health.Healthz)
		router.GET("/readyz", d.Health.Readyz)
	}
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics))
	}

	app := router.Group("", d.Sessions.Load())
	app.GET("/", d.Meals.Home)
	app.GET("/meals", d.Meals.List)
	app.GET("/mealDetails/:id", d.Meals.Details)
	app.GET("/login", d.Auth.LoginPage)
	app.POST("/login", d.Auth.Login)
	app.GET("/register", d.Auth.RegisterPage)
	app.POST("/register", d.Auth.Register)
	app.POST("/logout", d.Auth.Logout)
	app.POST("/theme", d.Theme.Toggle)

	api := app.Group("/api")
	if len(d.AllowedOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet},
			AllowHeaders:     []string{"Content-Type", middleware.HeaderTraceID},
			ExposeHeaders:    []string{middleware.HeaderTraceID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	api.GET("/session", d.Session.Current)

	private := app.Group("", middleware.Private(d.Render))
	private.POST("/mealDetails/:id/favorite", d.Meals.AddFavorite)
	private.POST("/mealDetails/:id/reviews", d.Meals.SubmitReview)
	private.GET("/order", d.Orders.New)
	private.POST("/order", d.Orders.Place)

	dash := private.Group("/dashboard", d.Roles.Profile())
	dash.GET("", d.Account.Home)
	dash.GET("/profile", d.Account.Profile)
	dash.POST("/profile", d.Account.UpdateProfile)
	dash.GET("/profile/request", d.Account.RequestRole)
	dash.POST("/profile/request", d.Account.RequestRole)
	dash.GET("/my-orders", d.Orders.Mine)
	dash.POST("/my-orders/:id/pay", d.Orders.Pay)
	dash.GET("/payment-success", d.Orders.PaymentSuccess)
	dash.GET("/payment-cancel", d.Orders.PaymentCancel)
	dash.GET("/favorites", d.Account.Favorites)
	dash.GET("/favorites/:id/delete", d.Account.RemoveFavorite)
	dash.POST("/favorites/:id/delete", d.Account.RemoveFavorite)
	dash.GET("/reviews", d.Account.Reviews)
	dash.GET("/reviews/:id/edit", d.Account.EditReview)
	dash.POST("/reviews/:id", d.Account.UpdateReview)
	dash.GET("/reviews/:id/delete", d.Account.DeleteReview)
	dash.POST("/reviews/:id/delete", d.Account.DeleteReview)

	chef := dash.Group("", middleware.RequireRole(d.Roles, model.RoleChef, d.Render))
	chef.GET("/add-meal", d.Chef.AddMealPage)
	chef.POST("/add-meal", d.Chef.AddMeal)
	chef.GET("/my-meals", d.Chef.MyMeals)
	chef.GET("/my-meals/:id/edit", d.Chef.EditMeal)
	chef.POST("/my-meals/:id", d.Chef.UpdateMeal)
	chef.GET("/my-meals/:id/delete", d.Chef.DeleteMeal)
	chef.POST("/my-meals/:id/delete", d.Chef.DeleteMeal)
	chef.GET("/meal-orders", d.Chef.Orders)
	chef.GET("/meal-orders/:id/:status", d.Chef.ChangeStatus)
	chef.POST("/meal-orders/:id/:status", d.Chef.ChangeStatus)

	admin := dash.Group("", middleware.RequireRole(d.Roles, model.RoleAdmin, d.Render))
	admin.GET("/manage-users", d.Admin.Users)
	admin.GET("/manage-users/:id/fraud", d.Admin.MarkFraud)
	admin.POST("/manage-users/:id/fraud", d.Admin.MarkFraud)
	admin.GET("/manage-request", d.Admin.Requests)
	admin.GET("/manage-request/:id/:action", d.Admin.ResolveRequest)
	admin.POST("/manage-request/:id/:action", d.Admin.ResolveRequest)
	admin.GET("/statistic", d.Admin.Statistics)

	router.NoRoute(d.Sessions.Load(), d.Render.NotFound)
	return router
}
