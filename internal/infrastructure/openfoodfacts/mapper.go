package openfoodfacts

import (
	"github.com/ekoscanner/ekoscanner/internal/domain"
)

// MapToProduct converts an OpenFoodFacts response to our domain Product.
// Fields are copied verbatim; the barcode is the one that was looked up.
func MapToProduct(code string, resp *domain.OFFResponse) (*domain.Product, error) {
	if resp == nil || !resp.Status.Found() || resp.Product == nil {
		return nil, domain.ErrProductNotFound
	}

	return &domain.Product{
		Code:       code,
		Name:       resp.Product.ProductName,
		Brand:      resp.Product.Brands,
		Categories: resp.Product.Categories,
		ImageURL:   resp.Product.ImageFrontURL,
	}, nil
}
