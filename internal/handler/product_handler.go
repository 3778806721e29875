package handler

import (
	"errors"

	"go-product-cms/internal/model"
	"go-product-cms/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// Helper to read the caller's identity set by the auth middleware. Empty
// means unauthenticated, which the service layer treats explicitly.
func identityFromCtx(c *fiber.Ctx) string {
	email := c.Locals("user_email")
	if email == nil {
		return ""
	}
	return email.(string)
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// GetLiveProducts returns published, non-deleted products.
// GET /api/v1/products/live (public)
func (h *ProductHandler) GetLiveProducts(c *fiber.Ctx) error {
	products, err := h.service.ListPublished()
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{"error": "Failed to fetch live products"})
	}
	return c.JSON(products)
}

// GetMyProducts returns every product created by the caller, deleted ones
// included so they can be restored.
// GET /api/v1/products/mine
func (h *ProductHandler) GetMyProducts(c *fiber.Ctx) error {
	products, err := h.service.ListOwned(identityFromCtx(c))
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{"error": "Failed to fetch your products"})
	}
	return c.JSON(products)
}

// GetProducts returns the full admin listing.
// GET /api/v1/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListAll(identityFromCtx(c))
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{"error": "Failed to fetch products"})
	}
	return c.JSON(products)
}

// GetProduct fetches one product. Anonymous callers only see published,
// non-deleted rows and get 404 otherwise.
// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.service.GetByID(identityFromCtx(c), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
		}
		return c.Status(errStatus(err)).JSON(fiber.Map{"error": "Failed to fetch product"})
	}
	return c.JSON(product)
}

// CreateProduct inserts a new product owned by the caller.
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req model.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.Create(identityFromCtx(c), &req)
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// UpdateProduct edits or restores a product.
// PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req model.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.Update(identityFromCtx(c), uint(id), &req)
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DeleteProduct soft-deletes a product.
// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.service.SoftDelete(identityFromCtx(c), uint(id)); err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Product soft-deleted"})
}
