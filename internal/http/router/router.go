package router

import (
	"context"
	"net/http"
	"time"

	apphttp "nuvra_crm_backend/internal/http"
	"nuvra_crm_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	healthCheckTimeout = 3 * time.Second
	roleAdmin          = "admin"
)

// New builds the gin engine and mounts every module.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	engine.GET("/api/health", healthHandler(app.Health))

	v1 := engine.Group("/api/v1")
	admin := v1.Group("/admin")
	admin.Use(httpkit.AuthRequired(app.Config), httpkit.RequireRole(roleAdmin))

	webhookLimiter := httpkit.NewPerMinuteLimiter(app.Config.GetWebhookRateLimitPerMinute(), app.Logger)

	rc := &apphttp.RouterContext{
		Engine:           engine,
		V1:               v1,
		Admin:            admin,
		WebhookRateLimit: webhookLimiter.RateLimit(),
	}

	for _, m := range app.Modules {
		m.RegisterRoutes(rc)
		app.Logger.Debug("module routes registered", "module", m.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-api-key", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{httpkit.HeaderRequestID},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.GetCORSOrigins()
	}
	return c
}

type databaseCheck struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Checks    struct {
		Database databaseCheck `json:"database"`
	} `json:"checks"`
}

func healthHandler(health apphttp.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := healthResponse{Status: "healthy", Timestamp: time.Now().UTC().Format(time.RFC3339)}

		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if health == nil {
			resp.Status = "unhealthy"
			resp.Checks.Database.Message = "Database not configured"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}

		if err := health.Ping(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Checks.Database.Message = "Connection failed: " + err.Error()
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}

		resp.Checks.Database.Connected = true
		resp.Checks.Database.Message = "Connected successfully"
		c.JSON(http.StatusOK, resp)
	}
}
