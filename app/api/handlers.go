package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feedstash/app/database"
	"feedstash/app/registry"
	"feedstash/app/scheduler"
)

type Handler struct {
	registry  *registry.Registry
	items     database.ItemRepository
	sources   database.SourceRepository
	processor scheduler.SourceProcessor
	sched     *scheduler.Scheduler
	version   string
	startedAt time.Time
}

func NewHandler(reg *registry.Registry, sources database.SourceRepository,
	items database.ItemRepository, processor scheduler.SourceProcessor,
	sched *scheduler.Scheduler, version string) *Handler {
	return &Handler{
		registry:  reg,
		items:     items,
		sources:   sources,
		processor: processor,
		sched:     sched,
		version:   version,
		startedAt: time.Now(),
	}
}

// ListSources returns all sources ordered by title, each annotated with
// its unread item count.
func (h *Handler) ListSources(c *gin.Context) {
	sources, err := h.registry.ListAll(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sources"})
		return
	}

	annotated := make([]SourceWithCount, 0, len(sources))
	for _, source := range sources {
		count, err := h.items.CountUnread(c.Request.Context(), source.ID)
		if err != nil {
			slog.Error("Database error", "operation", "count_unread", "source_id", source.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread items"})
			return
		}
		annotated = append(annotated, SourceWithCount{Source: source, Count: count})
	}

	c.JSON(http.StatusOK, gin.H{"data": annotated})
}

func (h *Handler) AddSource(c *gin.Context) {
	var req addSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	source, err := h.registry.Add(c.Request.Context(), req.Title, req.URL)
	if err != nil {
		if errors.Is(err, registry.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Database error", "operation", "add_source", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add source"})
		return
	}

	slog.Info("Source added", "source", source.Title, "url", source.URL, "id", source.ID)
	c.JSON(http.StatusCreated, gin.H{"data": source})
}

func (h *Handler) RemoveSource(c *gin.Context) {
	id := c.Param("id")

	removed, err := h.registry.Remove(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
			return
		}

		var cascadeErr *registry.CascadeError
		if errors.As(err, &cascadeErr) {
			slog.Error("Partial source removal", "source_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": cascadeErr.Error()})
			return
		}

		slog.Error("Database error", "operation", "remove_source", "source_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove source"})
		return
	}

	slog.Info("Source removed", "id", id, "removed_items", removed)
	c.JSON(http.StatusOK, gin.H{"data": removeSourceResponse{RemovedItems: removed}})
}

// ListItems returns unread items, newest publish time first. An optional
// source_id query parameter narrows the result to one source; read=all
// lifts the unread filter.
func (h *Handler) ListItems(c *gin.Context) {
	filter := database.ItemFilter{}

	if sourceID := c.Query("source_id"); sourceID != "" {
		filter.SourceID = &sourceID
	}

	switch c.DefaultQuery("read", "false") {
	case "all":
		// no read filter
	case "true":
		read := true
		filter.Read = &read
	default:
		read := false
		filter.Read = &read
	}

	items, err := h.items.List(c.Request.Context(), filter)
	if err != nil {
		slog.Error("Database error", "operation", "list_items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *Handler) MarkItemRead(c *gin.Context) {
	id := c.Param("id")

	item, err := h.items.MarkRead(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		slog.Error("Database error", "operation", "mark_read", "item_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark item read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

// RefreshSource triggers an immediate out-of-band poll of one source.
func (h *Handler) RefreshSource(c *gin.Context) {
	id := c.Param("id")

	source, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
			return
		}
		slog.Error("Database error", "operation", "get_source", "source_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get source"})
		return
	}

	if err := h.processor.Process(c.Request.Context(), *source); err != nil {
		slog.Error("Manual refresh failed", "source", source.Title, "url", source.URL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "refreshed"}})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if count, err := h.sources.Count(ctx); err == nil {
		health["sources"] = count
	} else {
		health["status"] = "degraded"
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{
		"version":           h.version,
		"uptime":            time.Since(h.startedAt).Round(time.Second).String(),
		"scheduler_running": h.sched.Running(),
	}

	ctx := c.Request.Context()

	if count, err := h.sources.Count(ctx); err == nil {
		stats["sources"] = count
	}
	if count, err := h.items.Count(ctx); err == nil {
		stats["items"] = count
	}
	if count, err := h.items.CountAllUnread(ctx); err == nil {
		stats["unread_items"] = count
	}

	c.JSON(http.StatusOK, stats)
}
