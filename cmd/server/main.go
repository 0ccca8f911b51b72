package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"weighbridge_backend/internal/database"
	"weighbridge_backend/internal/repositories"
	"weighbridge_backend/internal/repositories/memstore"
	"weighbridge_backend/internal/router"
	"weighbridge_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; edge units ship configuration through the process
	// environment.
	_ = godotenv.Load()

	utils.InitLogger()
	utils.InitJWT(utils.Getenv("JWT_SECRET", ""))

	var store repositories.Store
	storeDriver := utils.Getenv("STORE_DRIVER", "postgres")
	switch storeDriver {
	case "memory":
		store = memstore.New()
		utils.LogInfo("Store initialized", map[string]interface{}{"driver": "memory"})
	default:
		dbHost := utils.Getenv("DB_HOST", "localhost")
		dbPort := utils.Getenv("DB_PORT", "5432")
		dbUser := utils.Getenv("DB_USER", "weighbridge_user")
		dbPassword := utils.Getenv("DB_PASSWORD", "weighbridge_password")
		dbName := utils.Getenv("DB_NAME", "weighbridge_db")
		dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
		dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

		database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
		store = repositories.NewPostgresStore(database.GetDB())
		utils.LogInfo("Store initialized", map[string]interface{}{"driver": "postgres", "database": dbName})
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authRequired := utils.Getenv("AUTH_REQUIRED", "true") == "true"
	router.Setup(engine, store, authRequired)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "auth_required": authRequired})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
