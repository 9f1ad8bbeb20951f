package handler

import (
	"net/http"

	"connect-client/internal/adapter/http/dto"
	"connect-client/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck pings every dependency and reports 503 if any is down.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := dto.HealthResponse{
			Status:       "healthy",
			Dependencies: make(map[string]dto.DependencyStatus, len(checkers)),
		}
		httpCode := http.StatusOK

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				resp.Dependencies[checker.Name()] = dto.DependencyStatus{Status: "unhealthy", Error: err.Error()}
				resp.Status = "degraded"
				httpCode = http.StatusServiceUnavailable
				continue
			}
			resp.Dependencies[checker.Name()] = dto.DependencyStatus{Status: "healthy"}
		}

		c.JSON(httpCode, resp)
	}
}
