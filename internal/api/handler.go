// Package api exposes the read-only HTTP surface over the snapshot
// cache. Callers never see subsystem errors: the worst case response
// is a shorter-than-target or curated-only list.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devpath/resourced/internal/snapshot"
)

type Handler struct {
	Service *snapshot.Service
}

func NewRouter(svc *snapshot.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	h := &Handler{Service: svc}
	r.GET("/healthz", h.HandleHealth)
	r.GET("/api/categories", h.HandleAll)
	r.GET("/api/categories/:key", h.HandleCategory)
	return r
}

func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) HandleAll(c *gin.Context) {
	snaps := h.Service.All(c.Request.Context())
	c.JSON(http.StatusOK, snaps)
}

func (h *Handler) HandleCategory(c *gin.Context) {
	snap, err := h.Service.Snapshot(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, snapshot.ErrUnknownCategory) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshot unavailable"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
