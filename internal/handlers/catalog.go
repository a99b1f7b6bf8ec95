// internal/handlers/catalog.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kanistore/storefront/internal/i18n"
	"github.com/kanistore/storefront/internal/services"
	"github.com/kanistore/storefront/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

type RelatedQuery struct {
	Limit   int    `form:"limit" validate:"omitempty,min=1"`
	Exclude string `form:"exclude" validate:"omitempty,uuid"`
}

type SearchQuery struct {
	Query string `form:"query"`
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// GET /api/Category
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		utils.ServiceErrorResponse(c, err, i18n.KeyCategoryNotFound)
		return
	}

	utils.MessageResponse(c, i18n.KeyCategoriesListed, categories)
}

// GET /api/category/:categoryName/subcategories
func (h *CatalogHandler) ListSubcategories(c *gin.Context) {
	subcategories, err := h.catalogService.ListSubcategories(c.Request.Context(), c.Param("categoryName"))
	if err != nil {
		utils.ServiceErrorResponse(c, err, i18n.KeyCategoryNotFound)
		return
	}

	utils.MessageResponse(c, i18n.KeySubcategoriesListed, subcategories)
}

// GET /api/subcategories/:subcategoryId/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context(), c.Param("subcategoryId"))
	if err != nil {
		utils.ServiceErrorResponse(c, err, i18n.KeyProductsNotFound)
		return
	}

	utils.SuccessResponse(c, products)
}

// GET /api/product-details/:productId
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		utils.ServiceErrorResponse(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, product)
}

// GET /api/related/:subcategoryId
func (h *CatalogHandler) GetRelatedProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var query RelatedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "limit"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&query)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	products, err := h.catalogService.GetRelatedProducts(c.Request.Context(), c.Param("subcategoryId"), services.RelatedOptions{
		Limit:   query.Limit,
		Exclude: query.Exclude,
	})
	if err != nil {
		utils.ServiceErrorResponse(c, err, i18n.KeyRelatedNotFound)
		return
	}

	utils.ProductsResponse(c, products)
}

// GET /api/search?query=
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	products, err := h.catalogService.SearchProducts(c.Request.Context(), query.Query)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationQuery), nil)
			return
		}
		utils.ServiceErrorResponse(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.ProductsResponse(c, products)
}
