package handlers

import (
	"log"
	"strconv"

	"tokofon/internal/middleware"
	"tokofon/internal/models"
	"tokofon/internal/repositories"
	"tokofon/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const maxPerPage = 100

// PhoneHandler handles HTTP requests for the phone catalog.
type PhoneHandler struct {
	service  *services.PhoneService
	validate *validator.Validate
}

// NewPhoneHandler creates a new PhoneHandler.
func NewPhoneHandler(service *services.PhoneService) *PhoneHandler {
	return &PhoneHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes registers the catalog read routes (no auth).
func (h *PhoneHandler) RegisterPublicRoutes(router fiber.Router) {
	phoneRoutes := router.Group("/phones")
	phoneRoutes.Get("/", h.HandleGetPhones)
	phoneRoutes.Get("/:id", h.HandleGetPhoneByID)
}

// RegisterRoutes registers the catalog write routes, restricted to seller
// and admin roles. The role check is attached to the /phones prefix so it
// cannot bleed into sibling route groups.
func (h *PhoneHandler) RegisterRoutes(router fiber.Router) {
	phoneRoutes := router.Group("/phones", middleware.RolesRequired(models.RoleSeller, models.RoleAdmin))
	phoneRoutes.Post("/", h.HandleCreatePhone)
	phoneRoutes.Put("/:id", h.HandleUpdatePhone)
	phoneRoutes.Delete("/:id", h.HandleDeletePhone)
}

// HandleGetPhones lists phones with filtering, sorting and pagination.
func (h *PhoneHandler) HandleGetPhones(c *fiber.Ctx) error {
	filter := repositories.PhoneFilter{
		Manufacturer:      c.Query("manufacturer"),
		ModelNameContains: c.Query("model_name_contains"),
		SortBy:            c.Query("sort_by", "id"),
		SortDesc:          c.Query("order", "asc") == "desc",
		Page:              c.QueryInt("page", 1),
		PerPage:           c.QueryInt("per_page", 20),
	}
	if filter.Page <= 0 || filter.PerPage <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "'page' and 'per_page' must be positive",
		})
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}

	for _, bound := range []struct {
		query string
		dest  **float64
	}{
		{"price_min", &filter.PriceMin},
		{"price_max", &filter.PriceMax},
	} {
		raw := c.Query(bound.query)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "'" + bound.query + "' must be a non-negative number",
			})
		}
		*bound.dest = &value
	}
	if filter.PriceMin != nil && filter.PriceMax != nil && *filter.PriceMax < *filter.PriceMin {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "'price_max' must be greater than or equal to 'price_min'",
		})
	}

	phones, total, err := h.service.GetAllPhones(filter)
	if err != nil {
		log.Printf("Error getting phones: %v", err)
		return errorResponse(c, "Could not retrieve phones", err)
	}
	return c.JSON(fiber.Map{
		"data": phones,
		"meta": fiber.Map{
			"page":        filter.Page,
			"per_page":    filter.PerPage,
			"total_items": total,
		},
	})
}

// HandleGetPhoneByID retrieves a single phone.
func (h *PhoneHandler) HandleGetPhoneByID(c *fiber.Ctx) error {
	phone, err := h.service.GetPhoneByID(c.Params("id"))
	if err != nil {
		log.Printf("Error getting phone by ID %s: %v", c.Params("id"), err)
		return errorResponse(c, "Could not retrieve phone", err)
	}
	return c.JSON(phone)
}

// HandleCreatePhone creates a new phone listing owned by the caller.
func (h *PhoneHandler) HandleCreatePhone(c *fiber.Ctx) error {
	var phone models.Phone
	if err := c.BodyParser(&phone); err != nil {
		log.Printf("Error parsing phone request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(phone); err != nil {
		return validationErrorResponse(c, err)
	}

	if err := h.service.CreatePhone(&phone, middleware.Actor(c)); err != nil {
		log.Printf("Error creating phone: %v", err)
		return errorResponse(c, "Could not create phone", err)
	}
	return c.Status(fiber.StatusCreated).JSON(phone)
}

// HandleUpdatePhone updates an existing listing owned by the caller.
func (h *PhoneHandler) HandleUpdatePhone(c *fiber.Ctx) error {
	var phone models.Phone
	if err := c.BodyParser(&phone); err != nil {
		log.Printf("Error parsing phone request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	phone.ID = c.Params("id")
	if err := h.validate.Struct(phone); err != nil {
		return validationErrorResponse(c, err)
	}

	if err := h.service.UpdatePhone(&phone, middleware.Actor(c)); err != nil {
		log.Printf("Error updating phone %s: %v", phone.ID, err)
		return errorResponse(c, "Could not update phone", err)
	}

	updated, err := h.service.GetPhoneByID(phone.ID)
	if err != nil {
		return errorResponse(c, "Could not retrieve updated phone", err)
	}
	return c.JSON(updated)
}

// HandleDeletePhone deletes a listing owned by the caller.
func (h *PhoneHandler) HandleDeletePhone(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeletePhone(id, middleware.Actor(c)); err != nil {
		log.Printf("Error deleting phone %s: %v", id, err)
		return errorResponse(c, "Could not delete phone", err)
	}
	return c.JSON(fiber.Map{
		"message": "Phone " + id + " deleted successfully",
	})
}
