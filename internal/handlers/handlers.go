// Package handlers exposes the HTTP surface: the reputation profile
// endpoint backed by the scoring engine behind a short-TTL cache, and
// the daily check-in endpoints.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samrat1446/farcaster-mini-app/internal/engine"
	"github.com/samrat1446/farcaster-mini-app/internal/streaks"
	"github.com/samrat1446/farcaster-mini-app/pkg/cache"
	"github.com/samrat1446/farcaster-mini-app/pkg/logging"
)

// Handlers wires the engine and streak manager to gin routes.
type Handlers struct {
	engine  *engine.Engine
	streaks *streaks.Manager
	cache   *cache.Cache
	logger  logging.Logger
}

// CacheOptions returns the profile cache defaults: fresh for five
// minutes, served stale for another ten while refreshing, failures
// negatively cached for thirty seconds.
func CacheOptions() cache.Options {
	return cache.Options{
		TTL:                  5 * time.Minute,
		StaleWhileRevalidate: 10 * time.Minute,
		NegativeTTL:          30 * time.Second,
		MaxEntries:           10000,
	}
}

// New creates the handler set. The cache is owned here; the engine
// itself never caches.
func New(eng *engine.Engine, streakMgr *streaks.Manager, profileCache *cache.Cache, logger logging.Logger) *Handlers {
	return &Handlers{
		engine:  eng,
		streaks: streakMgr,
		cache:   profileCache,
		logger:  logger,
	}
}

// RegisterRoutes attaches the API routes to the router.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/profile", h.GetProfile)
	api.GET("/checkin", h.GetCheckInStatus)
	api.POST("/checkin", h.PostCheckIn)
}

// GetProfile handles GET /api/profile?fid=<fid>.
func (h *Handlers) GetProfile(c *gin.Context) {
	fid, ok := requireFID(c)
	if !ok {
		return
	}

	value, found, err := h.cache.Get(c.Request.Context(), fid, func(ctx context.Context, key string) (interface{}, bool, error) {
		profile, err := h.engine.GetReputationProfile(ctx, key)
		if err != nil {
			return nil, false, err
		}
		return profile, true, nil
	})
	if err != nil || !found {
		status, body := mapProviderError(err)
		h.logger.WithFields(logging.Fields{
			"fid":    fid,
			"status": status,
			"error":  errString(err),
		}).Warn("Profile request failed")
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, value.(*engine.Profile))
}

// GetCheckInStatus handles GET /api/checkin?fid=<fid>.
func (h *Handlers) GetCheckInStatus(c *gin.Context) {
	fid, ok := requireFID(c)
	if !ok {
		return
	}

	status, err := h.streaks.Status(c.Request.Context(), fid)
	if err != nil {
		h.logger.WithFields(logging.Fields{"fid": fid, "error": err.Error()}).Error("Failed to read check-in status")
		c.JSON(http.StatusInternalServerError, userFacingError{Error: "An unexpected error occurred.", Retryable: true, Action: "retry"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// PostCheckIn handles POST /api/checkin?fid=<fid>.
func (h *Handlers) PostCheckIn(c *gin.Context) {
	fid, ok := requireFID(c)
	if !ok {
		return
	}

	rec, err := h.streaks.CheckIn(c.Request.Context(), fid)
	if errors.Is(err, streaks.ErrAlreadyCheckedIn) {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "already checked in today",
			"record": rec,
		})
		return
	}
	if err != nil {
		h.logger.WithFields(logging.Fields{"fid": fid, "error": err.Error()}).Error("Failed to record check-in")
		c.JSON(http.StatusInternalServerError, userFacingError{Error: "An unexpected error occurred.", Retryable: true, Action: "retry"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// requireFID validates the fid query parameter: present and a positive
// integer. Responds 400 and returns ok=false otherwise.
func requireFID(c *gin.Context) (string, bool) {
	fid := c.Query("fid")
	if fid == "" {
		c.JSON(http.StatusBadRequest, userFacingError{Error: "fid query parameter is required", Action: "none"})
		return "", false
	}
	if n, err := strconv.ParseInt(fid, 10, 64); err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, userFacingError{Error: "fid must be a positive integer", Action: "none"})
		return "", false
	}
	return fid, true
}

func errString(err error) string {
	if err == nil {
		return "no usable result"
	}
	return err.Error()
}
