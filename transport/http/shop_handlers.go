package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/ports"
	"github.com/bazaar-labs/gatehouse/service"
)

// ShopHandlers contains HTTP handlers for shop registration and moderation
type ShopHandlers struct {
	moderation *service.ModerationService
}

// NewShopHandlers creates new shop handlers
func NewShopHandlers(moderation *service.ModerationService) *ShopHandlers {
	return &ShopHandlers{
		moderation: moderation,
	}
}

// transitionRequest is the body shared by approve, suspend and unsuspend.
// CurrentStatus is the optimistic-concurrency guard: the admin states the
// status their view is based on, and a stale view is rejected with 409.
type transitionRequest struct {
	Note          string          `json:"note"`
	Reason        string          `json:"reason"`
	CurrentStatus core.ShopStatus `json:"currentStatus" binding:"required"`
}

// Create registers a new shop in PENDING status
func (h *ShopHandlers) Create(c *gin.Context) {
	var req struct {
		OwnerWallet string `json:"ownerWallet" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	shop, err := h.moderation.CreateShop(c.Request.Context(), req.OwnerWallet, req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create shop"})
		return
	}

	c.JSON(http.StatusCreated, shop)
}

// List returns a paginated shop listing, optionally filtered by status and
// a free-text query over name and owner wallet
func (h *ShopHandlers) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	q := ports.ShopQuery{
		Page:     page,
		PageSize: 20,
		Search:   c.Query("q"),
	}

	if raw := c.Query("status"); raw != "" {
		status := core.ShopStatus(raw)
		if !core.ValidShopStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		q.Status = &status
	}

	shops, total, err := h.moderation.ListShops(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list shops"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shops": shops,
		"total": total,
		"page":  q.Page,
	})
}

// Get returns a single shop
func (h *ShopHandlers) Get(c *gin.Context) {
	shop, err := h.moderation.GetShop(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == core.ErrShopNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "shop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load shop"})
		return
	}

	c.JSON(http.StatusOK, shop)
}

// Approve transitions a shop to ACTIVE
func (h *ShopHandlers) Approve(c *gin.Context) {
	h.applyTransition(c, func(ctx *gin.Context, req transitionRequest, actor string) (core.Shop, error) {
		return h.moderation.ApproveShop(ctx.Request.Context(), ctx.Param("id"), actor, req.Note, req.CurrentStatus)
	})
}

// Suspend transitions a shop to SUSPENDED; a reason is mandatory
func (h *ShopHandlers) Suspend(c *gin.Context) {
	h.applyTransition(c, func(ctx *gin.Context, req transitionRequest, actor string) (core.Shop, error) {
		return h.moderation.SuspendShop(ctx.Request.Context(), ctx.Param("id"), actor, req.Reason, req.CurrentStatus)
	})
}

// Unsuspend transitions a shop back to ACTIVE. Same transition as Approve
// by business rule; kept as its own route so the admin UI and the audit
// trail read naturally.
func (h *ShopHandlers) Unsuspend(c *gin.Context) {
	h.applyTransition(c, func(ctx *gin.Context, req transitionRequest, actor string) (core.Shop, error) {
		return h.moderation.ApproveShop(ctx.Request.Context(), ctx.Param("id"), actor, req.Note, req.CurrentStatus)
	})
}

// Audit returns the moderation trail for a shop
func (h *ShopHandlers) Audit(c *gin.Context) {
	entries, err := h.moderation.AuditTrail(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit trail"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *ShopHandlers) applyTransition(c *gin.Context, apply func(*gin.Context, transitionRequest, string) (core.Shop, error)) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}
	if !core.ValidShopStatus(req.CurrentStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid currentStatus"})
		return
	}

	actor := c.GetString("adminWallet")

	shop, err := apply(c, req, actor)
	if err != nil {
		switch err {
		case core.ErrMissingReason:
			c.JSON(http.StatusBadRequest, gin.H{"error": "a non-empty reason is required"})
		case core.ErrShopNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "shop not found"})
		case core.ErrConflictingState:
			c.JSON(http.StatusConflict, gin.H{"error": "shop status changed, refresh and retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update shop"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "shop": shop})
}
