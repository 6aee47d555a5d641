package routes

import (
	"net/http"
	"time"

	"estuary/handlers"
	"estuary/middleware"
	"estuary/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers sign-in endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/login", hb.Auth.Login)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.Sessions))
		protected.GET("/me", hb.Auth.Me)
		protected.POST("/logout", hb.Auth.Logout)
	}
}

// RegisterCatalogRoutes registers the lookups behind the wizard's selects.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/catalog")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.Sessions))
		api.GET("/service-types", hb.Catalog.ServiceTypes)
		api.GET("/categories", hb.Catalog.Categories)
		api.GET("/practitioner-categories", hb.Catalog.PractitionerCategories)
		api.GET("/modalities", hb.Catalog.Modalities)
		api.GET("/schedules", hb.Catalog.Schedules)
		api.GET("/sessions", hb.Catalog.Sessions)
		api.GET("/practitioners", hb.Catalog.Practitioners)
	}
}

// RegisterWizardRoutes registers the service creation wizard.
func RegisterWizardRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	w := hb.Wizard
	api := r.Group("/api/wizard")
	api.Use(middleware.JWTAuthMiddleware(hb.Sessions))
	{
		api.POST("", w.Start)
		api.GET("", w.List)
		api.GET("/:id", w.Get)
		api.DELETE("/:id", w.Discard)

		api.PATCH("/:id/fields", w.SetFields)
		api.PUT("/:id/draft", w.ReplaceDraft)
		api.PUT("/:id/type", w.SelectType)

		api.POST("/:id/advance", w.Advance)
		api.POST("/:id/back", w.Back)
		api.PUT("/:id/phase", w.GoTo)
		api.GET("/:id/steps", w.Steps)
		api.POST("/:id/validate", w.Validate)

		api.PUT("/:id/bundle", w.SetBundle)
		api.PUT("/:id/bundle/price", w.SetBundlePrice)
		api.DELETE("/:id/bundle/price", w.ResetBundlePrice)
		api.PUT("/:id/bundle/discount", w.SetBundleDiscount)

		api.POST("/:id/package/sessions", w.AddPackageSession)
		api.DELETE("/:id/package/sessions/:serviceID", w.RemovePackageSession)
		api.POST("/:id/package/sessions/move", w.MovePackageSession)
		api.PUT("/:id/package/discount", w.SetPackageDiscount)
		api.GET("/:id/pricing", w.Pricing)

		api.POST("/:id/benefits", w.AddBenefit)
		api.PUT("/:id/benefits/:benefitID", w.UpdateBenefit)
		api.DELETE("/:id/benefits/:benefitID", w.RemoveBenefit)
		api.POST("/:id/benefits/move", w.MoveBenefit)

		api.POST("/:id/schedule", w.AddScheduleSession)
		api.DELETE("/:id/schedule/:sessionID", w.RemoveScheduleSession)
		api.POST("/:id/schedule/move", w.MoveScheduleSession)

		api.POST("/:id/resources", w.AddResource)
		api.DELETE("/:id/resources/:resourceID", w.RemoveResource)
		api.POST("/:id/resources/move", w.MoveResource)
		api.POST("/:id/cover-image", w.UploadCoverImage)

		api.POST("/:id/revenue", w.AddCoPractitioner)
		api.POST("/:id/revenue/distribute", w.DistributeRevenue)
		api.PUT("/:id/revenue/:practitionerID", w.SetRevenueShare)
		api.DELETE("/:id/revenue/:practitionerID", w.RemoveCoPractitioner)

		api.GET("/:id/preview", w.Preview)
		api.POST("/:id/submit", w.Submit)
	}
}

// RegisterServiceRoutes registers endpoints on services that already exist.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services/:serviceID/questions")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.Sessions))
		api.GET("", hb.Questions.List)
		api.POST("", hb.Questions.Create)
		api.DELETE("/:questionID", hb.Questions.Delete)
	}
}

// RegisterHealthRoute reports the last backing store check.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": http.StatusText(code), "checks": status})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if allowsAny(hb.AllowedOrigins) {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = hb.AllowedOrigins
	}
	r.Use(cors.New(corsConfig))
	r.Use(middleware.RateLimitMiddleware(hb.RequestsPerMinute))
	r.Use(middleware.ToastCollector())

	RegisterAuthRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterWizardRoutes(r, hb)
	RegisterServiceRoutes(r, hb)
	RegisterHealthRoute(r)
}

func allowsAny(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
