package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/ports"
	"github.com/bazaar-labs/gatehouse/service"
)

// OrderHandlers contains HTTP handlers for order endpoints
type OrderHandlers struct {
	orders *service.OrderService
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(orders *service.OrderService) *OrderHandlers {
	return &OrderHandlers{
		orders: orders,
	}
}

// Create records a new order
func (h *OrderHandlers) Create(c *gin.Context) {
	var req struct {
		BuyerWallet  string `json:"buyerWallet" binding:"required"`
		SellerWallet string `json:"sellerWallet" binding:"required"`
		ShopID       string `json:"shopId"`
		Amount       string `json:"amount" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.BuyerWallet, req.SellerWallet, req.ShopID, amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// List returns the orders for a wallet in a given role
func (h *OrderHandlers) List(c *gin.Context) {
	role := ports.OrderRole(c.Query("role"))
	wallet := c.Query("wallet")

	if wallet == "" || (role != ports.OrderRoleBuyer && role != ports.OrderRoleSeller) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be buyer or seller and wallet is required"})
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), role, wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdateStatus advances an order's status on behalf of its seller
func (h *OrderHandlers) UpdateStatus(c *gin.Context) {
	var req struct {
		OrderID      string `json:"orderId" binding:"required"`
		Status       string `json:"status" binding:"required"`
		SellerWallet string `json:"sellerWallet" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	_, err := h.orders.UpdateStatus(c.Request.Context(), req.OrderID, core.OrderStatus(req.Status), req.SellerWallet)
	if err != nil {
		switch err {
		case core.ErrOrderNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found", "success": false})
		case core.ErrForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": "only the seller may update this order", "success": false})
		case core.ErrInvalidTransition:
			c.JSON(http.StatusConflict, gin.H{"error": "status transition not permitted", "success": false})
		case core.ErrConflictingState:
			c.JSON(http.StatusConflict, gin.H{"error": "order status changed concurrently", "success": false})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order", "success": false})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
