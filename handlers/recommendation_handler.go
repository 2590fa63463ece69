package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"pricing-system/config"
	"pricing-system/internal/status"
	"pricing-system/security"
	"pricing-system/services"
)

type RecommendationHandler struct {
	service *services.RecommendationService
	limiter *security.RateLimiter
	config  *config.Config
}

func NewRecommendationHandler(service *services.RecommendationService, limiter *security.RateLimiter, cfg *config.Config) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
		limiter: limiter,
		config:  cfg,
	}
}

// Run triggers one recommendation job invocation. Per-ticket failures are
// swallowed inside the job; the only 500 here is the events list itself
// being unreadable.
func (h *RecommendationHandler) Run(e *core.RequestEvent) error {
	if h.limiter != nil {
		allowed, err := h.limiter.Allow(e.Request.Context(),
			"reccomendation:"+e.RealIP(),
			h.config.RecommendationRateLimit, h.config.RateLimitWindow)
		if err == nil && !allowed {
			return e.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}
	}

	if err := h.service.Run(e.Request.Context()); err != nil {
		if errors.Is(err, status.ErrJobAlreadyRunning) {
			return e.JSON(http.StatusConflict, map[string]string{
				"error": "A recommendation run is already in progress",
			})
		}
		return e.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return e.JSON(http.StatusOK, map[string]string{
		"message": "Recommendations processed successfully",
	})
}
