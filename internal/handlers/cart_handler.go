package handlers

import (
	"log"

	"tokofon/internal/middleware"
	"tokofon/internal/models"
	"tokofon/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the buyer's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes, restricted to buyers. The role
// check is attached to the /cart prefix so it cannot bleed into sibling
// route groups.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart", middleware.RolesRequired(models.RoleBuyer))
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:phone_id", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:phone_id", h.HandleRemoveItem)
}

// CartItemRequest is the request body for adding or updating a cart line.
type CartItemRequest struct {
	PhoneID  string `json:"phone_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// HandleGetCart returns the caller's cart, creating it on first access.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(middleware.Actor(c).UserID)
	if err != nil {
		log.Printf("Error getting cart: %v", err)
		return errorResponse(c, "Could not retrieve cart", err)
	}
	return h.cartResponse(c, fiber.StatusOK, "", cart)
}

// HandleAddItem adds a phone to the caller's cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	cart, err := h.service.AddItem(middleware.Actor(c).UserID, req.PhoneID, req.Quantity)
	if err != nil {
		log.Printf("Error adding cart item: %v", err)
		return errorResponse(c, "Could not add item to cart", err)
	}
	return h.cartResponse(c, fiber.StatusOK, "Item added to cart", cart)
}

// HandleUpdateItem sets the quantity of a cart line; a quantity of zero or
// less removes the line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart item update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	cart, err := h.service.UpdateItem(middleware.Actor(c).UserID, c.Params("phone_id"), req.Quantity)
	if err != nil {
		log.Printf("Error updating cart item: %v", err)
		return errorResponse(c, "Could not update cart item", err)
	}
	return h.cartResponse(c, fiber.StatusOK, "Cart item updated", cart)
}

// HandleRemoveItem deletes a single line from the caller's cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(middleware.Actor(c).UserID, c.Params("phone_id"))
	if err != nil {
		log.Printf("Error removing cart item: %v", err)
		return errorResponse(c, "Could not remove cart item", err)
	}
	return h.cartResponse(c, fiber.StatusOK, "Cart item removed", cart)
}

// HandleClearCart removes every line from the caller's cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	cart, err := h.service.Clear(middleware.Actor(c).UserID)
	if err != nil {
		log.Printf("Error clearing cart: %v", err)
		return errorResponse(c, "Could not clear cart", err)
	}
	return h.cartResponse(c, fiber.StatusOK, "Cart cleared", cart)
}

// cartResponse renders a cart together with its derived total price.
func (h *CartHandler) cartResponse(c *fiber.Ctx, status int, message string, cart *models.Cart) error {
	total, err := h.service.TotalPrice(cart)
	if err != nil {
		log.Printf("Error computing cart total: %v", err)
		return errorResponse(c, "Could not compute cart total", err)
	}
	body := fiber.Map{
		"cart":        cart,
		"total_price": total,
	}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}
