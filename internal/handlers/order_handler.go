package handlers

import (
	"log"

	"tokofon/internal/middleware"
	"tokofon/internal/models"
	"tokofon/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app. Checkout
// is buyer-only; the remaining routes enforce role policy in the service.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", middleware.RolesRequired(models.RoleBuyer), h.HandleCheckout)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id/status", middleware.RolesRequired(models.RoleSeller, models.RoleAdmin), h.HandleUpdateOrderStatus)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// CheckoutRequest is the request body for creating an order from the cart.
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=10,max=500"`
}

// StatusUpdateRequest is the request body for an order status change.
type StatusUpdateRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled failed"`
}

// HandleCheckout converts the caller's cart into a new pending order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	order, err := h.service.Checkout(middleware.Actor(c).UserID, req.ShippingAddress)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return errorResponse(c, "Could not create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders lists the orders visible to the caller.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 20)
	if page <= 0 || perPage <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "'page' and 'per_page' must be positive",
		})
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid status filter: " + string(status),
		})
	}

	orders, total, err := h.service.GetOrders(middleware.Actor(c), status, page, perPage)
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return errorResponse(c, "Could not retrieve orders", err)
	}
	return c.JSON(fiber.Map{
		"data": orders,
		"meta": fiber.Map{
			"page":        page,
			"per_page":    perPage,
			"total_items": total,
		},
	})
}

// HandleGetOrderByID retrieves a single order visible to the caller.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.Params("id"), middleware.Actor(c))
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", c.Params("id"), err)
		return errorResponse(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus drives the order state machine. Moving an order
// to cancelled through this route restores stock like a cancellation.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.Params("id"), req.Status, middleware.Actor(c))
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", c.Params("id"), err)
		return errorResponse(c, "Could not update order status", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// HandleCancelOrder cancels an order and restores its stock.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.Params("id"), middleware.Actor(c))
	if err != nil {
		log.Printf("Error cancelling order %s: %v", c.Params("id"), err)
		return errorResponse(c, "Could not cancel order", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled, stock restored",
		"order":   order,
	})
}
