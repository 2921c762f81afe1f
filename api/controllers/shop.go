package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/api/responses"
	"github.com/sportshoplabs/sportshop-backend/api/validators"
	catalogsvc "github.com/sportshoplabs/sportshop-backend/internal/catalog"
	userssvc "github.com/sportshoplabs/sportshop-backend/internal/users"
	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/logger"
	"github.com/sportshoplabs/sportshop-backend/pkg/pagination"
)

type storefrontResponse struct {
	SiteTitle       string             `json:"site_title"`
	SiteHeader      string             `json:"site_header"`
	NewProducts     []productResponse  `json:"new_products"`
	PopularProducts []productResponse  `json:"popular_products"`
	TopDiscounts    []discountResponse `json:"top_discounts"`
	AveragePrice    decimal.Decimal    `json:"average_price"`
	Categories      []namedResponse    `json:"categories"`
}

// Storefront serves the landing page payload.
func Storefront(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		front, err := svc.GetStorefront(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discounts := make([]discountResponse, 0, len(front.TopDiscounts))
		for _, d := range front.TopDiscounts {
			discounts = append(discounts, newDiscountResponse(d))
		}

		responses.WriteSuccess(w, storefrontResponse{
			SiteTitle:       front.SiteTitle,
			SiteHeader:      front.SiteHeader,
			NewProducts:     newProductResponses(front.NewProducts),
			PopularProducts: newProductResponses(front.PopularProducts),
			TopDiscounts:    discounts,
			AveragePrice:    front.AveragePrice,
			Categories:      newNamedResponsesFromCategories(front.Categories),
		})
	}
}

type productPageResponse struct {
	Products   []productResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ProductList serves the filtered, cursor-paginated catalog listing.
func ProductList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filter, err := listFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productPageResponse{
			Products:   newProductResponses(page.Products),
			NextCursor: page.NextCursor,
		})
	}
}

func listFilterFromQuery(r *http.Request) (catalogsvc.ListFilter, error) {
	priceMin, err := validators.QueryDecimal(r, "price_min")
	if err != nil {
		return catalogsvc.ListFilter{}, err
	}
	priceMax, err := validators.QueryDecimal(r, "price_max")
	if err != nil {
		return catalogsvc.ListFilter{}, err
	}
	limit, err := validators.QueryInt(r, "limit", 0)
	if err != nil {
		return catalogsvc.ListFilter{}, err
	}
	cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		return catalogsvc.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	return catalogsvc.ListFilter{
		Search:       strings.TrimSpace(r.URL.Query().Get("q")),
		CategoryName: strings.TrimSpace(r.URL.Query().Get("category")),
		PriceMin:     priceMin,
		PriceMax:     priceMax,
		InStockOnly:  validators.QueryBool(r, "in_stock"),
		Limit:        limit,
		Cursor:       cursor,
	}, nil
}

// ProductGet serves a single product by id.
func ProductGet(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "productID"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

type createProductRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Price        string   `json:"price" validate:"required"`
	Stock        int      `json:"stock" validate:"min=0"`
	CategoryID   string   `json:"category_id" validate:"required"`
	BrandID      string   `json:"brand_id" validate:"required"`
	Size         string   `json:"size" validate:"required,oneof=S M L XL"`
	ExternalPage *string  `json:"external_page"`
	TagIDs       []string `json:"tag_ids"`
}

func (p createProductRequest) toInput() (catalogsvc.CreateProductInput, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return catalogsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	categoryID, err := validators.PathUUID(p.CategoryID, "category id")
	if err != nil {
		return catalogsvc.CreateProductInput{}, err
	}
	brandID, err := validators.PathUUID(p.BrandID, "brand id")
	if err != nil {
		return catalogsvc.CreateProductInput{}, err
	}
	size, err := parseProductSize(p.Size)
	if err != nil {
		return catalogsvc.CreateProductInput{}, err
	}

	input := catalogsvc.CreateProductInput{
		Name:         p.Name,
		Description:  p.Description,
		Price:        price,
		Stock:        p.Stock,
		CategoryID:   categoryID,
		BrandID:      brandID,
		Size:         size,
		ExternalPage: p.ExternalPage,
	}
	for _, raw := range p.TagIDs {
		tagID, err := validators.PathUUID(raw, "tag id")
		if err != nil {
			return catalogsvc.CreateProductInput{}, err
		}
		input.TagIDs = append(input.TagIDs, tagID)
	}
	return input, nil
}

// ProductCreate creates a catalog listing. Staff only.
func ProductCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(*product))
	}
}

type updateProductRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Price        *string `json:"price"`
	Stock        *int    `json:"stock"`
	CategoryID   *string `json:"category_id"`
	BrandID      *string `json:"brand_id"`
	Size         *string `json:"size"`
	ExternalPage *string `json:"external_page"`
}

func (p updateProductRequest) toInput() (catalogsvc.UpdateProductInput, error) {
	input := catalogsvc.UpdateProductInput{
		Name:         p.Name,
		Description:  p.Description,
		Stock:        p.Stock,
		ExternalPage: p.ExternalPage,
	}
	if p.Price != nil {
		price, err := decimal.NewFromString(*p.Price)
		if err != nil {
			return catalogsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
		}
		input.Price = &price
	}
	if p.CategoryID != nil {
		id, err := validators.PathUUID(*p.CategoryID, "category id")
		if err != nil {
			return catalogsvc.UpdateProductInput{}, err
		}
		input.CategoryID = &id
	}
	if p.BrandID != nil {
		id, err := validators.PathUUID(*p.BrandID, "brand id")
		if err != nil {
			return catalogsvc.UpdateProductInput{}, err
		}
		input.BrandID = &id
	}
	if p.Size != nil {
		size, err := parseProductSize(*p.Size)
		if err != nil {
			return catalogsvc.UpdateProductInput{}, err
		}
		input.Size = &size
	}
	return input, nil
}

// ProductUpdate partially updates a catalog listing. Staff only.
func ProductUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "productID"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

// ProductDelete removes a catalog listing. Staff only.
func ProductDelete(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "productID"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// CategoryList serves every category.
func CategoryList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		list, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newNamedResponsesFromCategories(list))
	}
}

// BrandList serves every brand.
func BrandList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		list, err := svc.ListBrands(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newNamedResponsesFromBrands(list))
	}
}

// TagList serves every tag.
func TagList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		list, err := svc.ListTags(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newNamedResponsesFromTags(list))
	}
}

type categoryStatResponse struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	ProductCount int64           `json:"product_count"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

type aggregatesResponse struct {
	AveragePrice decimal.Decimal        `json:"average_price"`
	TotalStock   int64                  `json:"total_stock"`
	ProductCount int64                  `json:"product_count"`
	ByCategory   []categoryStatResponse `json:"by_category"`
}

// CatalogAggregates serves back-office catalog statistics. Staff only.
func CatalogAggregates(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		agg, err := svc.GetAggregates(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats := make([]categoryStatResponse, 0, len(agg.ByCategory))
		for _, s := range agg.ByCategory {
			stats = append(stats, categoryStatResponse{
				CategoryID:   s.CategoryID.String(),
				CategoryName: s.CategoryName,
				ProductCount: s.ProductCount,
				AveragePrice: s.AveragePrice,
			})
		}

		responses.WriteSuccess(w, aggregatesResponse{
			AveragePrice: agg.AveragePrice,
			TotalStock:   agg.TotalStock,
			ProductCount: agg.ProductCount,
			ByCategory:   stats,
		})
	}
}

func parseProductSize(raw string) (enums.ProductSize, error) {
	size, err := enums.ParseProductSize(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size")
	}
	return size, nil
}

// FavoriteAdd marks a product as the caller's favorite.
func FavoriteAdd(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AddFavorite(r.Context(), userID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "added"})
	}
}

// FavoriteRemove clears a product from the caller's favorites.
func FavoriteRemove(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveFavorite(r.Context(), userID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// FavoriteList serves the caller's favorite products.
func FavoriteList(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListFavorites(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponses(list))
	}
}
