package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/application/usecase"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

// CatalogHandler CRUD de productos, genéricos y proveedores (protegido).
type CatalogHandler struct {
	products  *usecase.ProductUseCase
	generics  *usecase.GenericUseCase
	suppliers *usecase.SupplierUseCase
	log       *logger.Logger
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(products *usecase.ProductUseCase, generics *usecase.GenericUseCase, suppliers *usecase.SupplierUseCase, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{products: products, generics: generics, suppliers: suppliers, log: log}
}

// ── Products ─────────────────────────────────────────────────────────────────

// CreateProduct godoc
// @Summary      Crear producto
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateProductRequest  true  "brand_name, generic_id, is_controlled, reorder_level"
// @Success      201   {object}  dto.ProductResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.products.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListProducts godoc
// @Summary      Listar productos
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        search  query     string  false  "marca o genérico"
// @Param        limit   query     int     false  "default 100"
// @Param        offset  query     int     false  "default 0"
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/stock/products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := queryAndValidate(c, &page); err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.products.List(c.UserContext(), c.Query("search"), page)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetProduct godoc
// @Summary      Obtener producto
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	out, err := h.products.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateProduct godoc
// @Summary      Actualizar producto
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Product ID"
// @Param        body  body      dto.UpdateProductRequest  true  "campos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Router       /api/stock/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.products.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

// DeleteProduct godoc
// @Summary      Eliminar producto (admin)
// @Description  Falla con 409 si el producto tiene lotes.
// @Tags         catalog
// @Security     Bearer
// @Param        id   path  string  true  "Product ID"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.products.Delete(c.UserContext(), c.Params("id")); err != nil {
		return handleError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Generics ─────────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateGeneric(c *fiber.Ctx) error {
	var in dto.GenericRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.generics.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) ListGenerics(c *fiber.Ctx) error {
	out, err := h.generics.List(c.UserContext())
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) GetGeneric(c *fiber.Ctx) error {
	out, err := h.generics.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) UpdateGeneric(c *fiber.Ctx) error {
	var in dto.GenericRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.generics.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) DeleteGeneric(c *fiber.Ctx) error {
	if err := h.generics.Delete(c.UserContext(), c.Params("id")); err != nil {
		return handleError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Suppliers ────────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.SupplierRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.suppliers.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) ListSuppliers(c *fiber.Ctx) error {
	out, err := h.suppliers.List(c.UserContext())
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) GetSupplier(c *fiber.Ctx) error {
	out, err := h.suppliers.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) UpdateSupplier(c *fiber.Ctx) error {
	var in dto.SupplierRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.suppliers.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) DeleteSupplier(c *fiber.Ctx) error {
	if err := h.suppliers.Delete(c.UserContext(), c.Params("id")); err != nil {
		return handleError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
