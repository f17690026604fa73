package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/formbuilder-server/controllers"
	"github.com/vnkhanh/formbuilder-server/middleware"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/google/login", controllers.GoogleLoginHandler)
		}
		protected := api.Group("/")
		protected.Use(middleware.AuthJWT())
		{
			protected.GET("/me", controllers.Me)
		}

		forms := api.Group("/forms")
		{
			forms.Use(middleware.AuthJWT())
			forms.POST("", middleware.RateLimitFormsCreate(), controllers.CreateForm)
			forms.GET("/my", controllers.GetMyForms)
			forms.GET("/:id", controllers.GetFormDetail)
			// writes need editor permission (JWT owner or edit token)
			forms.PUT("/:id", middleware.CheckFormEditor(), controllers.UpdateForm)
			forms.DELETE("/:id", middleware.CheckFormEditor(), controllers.DeleteForm)
			forms.POST("/:id/publish", middleware.CheckFormOwner(), controllers.PublishForm)
			forms.POST("/:id/share", middleware.CheckFormOwner(), controllers.ShareForm)

			forms.POST("/:id/fields", middleware.CheckFormEditor(), controllers.AddField)
			forms.PUT("/:id/fields/reorder", middleware.CheckFormEditor(), controllers.ReorderFields)

			forms.GET("/:id/entries", middleware.CheckFormOwner(), controllers.ListEntries)
			forms.GET("/:id/entries/:entry_id", middleware.CheckFormOwner(), controllers.GetEntryDetail)
			forms.PUT("/:id/entries/:entry_id", controllers.UpdateEntry)
			forms.POST("/:id/entries/import", middleware.CheckFormOwner(), controllers.ImportEntries)
			forms.GET("/:id/report", middleware.CheckFormOwner(), controllers.GetFormReport)
			forms.POST("/:id/export", middleware.CheckFormEditor(), controllers.CreateExport)
		}
		// public submission surface
		api.GET("/forms/public/:shareToken", controllers.GetPublicForm)
		api.POST("/forms/:id/entries", middleware.OptionalAuth(), middleware.RateLimitEntriesCreate(), controllers.CreateEntry)

		api.PUT("/fields/:id", middleware.OptionalAuth(), controllers.UpdateField)
		api.DELETE("/fields/:id", middleware.OptionalAuth(), controllers.DeleteField)

		api.GET("/exports/:job_id", middleware.AuthJWT(), controllers.GetExport)

		admin := api.Group("/admin")
		admin.Use(middleware.AuthJWT(), middleware.RequireAdmin())
		{
			admin.GET("/forms", controllers.GetAllForms)
		}
	}
}
