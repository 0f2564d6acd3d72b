package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Display and prompt defaults for missing product fields.
const (
	DefaultProductName = "Okänd produkt"
	DefaultBrand       = "Okänt varumärke"
	DefaultCategories  = "Okända kategorier"
)

// Product is the subset of catalog metadata the app shows and summarizes.
// An empty field means the catalog did not provide it.
type Product struct {
	Code       string `json:"code"`
	Name       string `json:"productName,omitempty"`
	Brand      string `json:"brand,omitempty"`
	Categories string `json:"categories,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// DisplayName returns the product name or its default.
func (p *Product) DisplayName() string {
	return orDefault(p.Name, DefaultProductName)
}

// DisplayBrand returns the brand or its default.
func (p *Product) DisplayBrand() string {
	return orDefault(p.Brand, DefaultBrand)
}

// DisplayCategories returns the category list or its default.
func (p *Product) DisplayCategories() string {
	return orDefault(p.Categories, DefaultCategories)
}

// SummaryRequest builds the relay request with defaults substituted.
func (p *Product) SummaryRequest() SummaryRequest {
	return SummaryRequest{
		ProductName: p.DisplayName(),
		Brand:       p.DisplayBrand(),
		Categories:  p.DisplayCategories(),
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// OFFResponse is the OpenFoodFacts v0 product response
type OFFResponse struct {
	Status  OFFStatus   `json:"status"`
	Code    string      `json:"code,omitempty"`
	Product *OFFProduct `json:"product,omitempty"`
}

// OFFProduct holds the product fields we read from OpenFoodFacts
type OFFProduct struct {
	ProductName   string `json:"product_name,omitempty"`
	Brands        string `json:"brands,omitempty"`
	Categories    string `json:"categories,omitempty"`
	ImageFrontURL string `json:"image_front_url,omitempty"`
}

// OFFStatus accepts the status field as either a number or a numeric string.
type OFFStatus int

// UnmarshalJSON implements json.Unmarshaler
func (s *OFFStatus) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		v, err := strconv.Atoi(n.String())
		if err != nil {
			return err
		}
		*s = OFFStatus(v)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return err
	}
	*s = OFFStatus(v)
	return nil
}

// Found reports whether the catalog returned a product
func (s OFFStatus) Found() bool {
	return s != 0
}
