package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/vnkhanh/formbuilder-server/config"
	"github.com/vnkhanh/formbuilder-server/controllers"
	"github.com/vnkhanh/formbuilder-server/routes"
)

func main() {
	// .env is optional, real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	// DB connection + AutoMigrate
	config.ConnectDB()

	// finished export artifacts are kept for 24h
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		controllers.CleanupExpiredExports(24 * time.Hour)
	}); err != nil {
		log.Fatalf("failed to schedule export cleanup: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := gin.Default()

	allowedOrigins := strings.Split(os.Getenv("CORS_ORIGINS"), ",")
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			for _, o := range allowedOrigins {
				if origin == strings.TrimSpace(o) {
					return true
				}
			}
			return false
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Form-Edit-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Form builder server is running")
	})

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on port %s\n", port)
	r.Run(":" + port)
}
