package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Product is a catalog record as it arrives from the catalog or the UI.
// Its shape is loose: the identity may live in ID or FirestoreID, the price
// may be a number or a string, and images may be objects or plain URLs.
type Product struct {
	ID          string         `json:"id"`
	FirestoreID string         `json:"firestoreId"`
	Name        string         `json:"name"`
	Price       PriceValue     `json:"price"`
	Image       string         `json:"image"`
	Images      []ProductImage `json:"images"`
	Category    string         `json:"category"`
	Fabric      string         `json:"fabric"`
	Origin      string         `json:"origin"`
	Work        string         `json:"work"`
	Occasion    string         `json:"occasion"`
	Description string         `json:"description"`
}

// ProductImage is one entry of a product's image gallery.
type ProductImage struct {
	URL    string `json:"url"`
	IsMain bool   `json:"isMain"`
}

// UnmarshalJSON accepts either {"url": ..., "isMain": ...} or a bare URL string.
func (img *ProductImage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var url string
		if err := json.Unmarshal(data, &url); err != nil {
			return err
		}
		*img = ProductImage{URL: url}
		return nil
	}

	type plain ProductImage
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*img = ProductImage(p)
	return nil
}

// PriceValue is a price kept in its display form. It decodes from a JSON
// string verbatim or from a JSON number printed without exponent.
type PriceValue string

// UnmarshalJSON implements json.Unmarshaler.
func (p *PriceValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*p = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PriceValue(s)
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("price must be a string or a number: %w", err)
	}
	*p = PriceValue(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// ProductSummary is the narrow, validated product shape the stores accept.
type ProductSummary struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Price    string `json:"price" validate:"required"`
	Image    string `json:"image" validate:"required"`
	Category string `json:"category,omitempty"`
	Fabric   string `json:"fabric,omitempty"`
	Origin   string `json:"origin,omitempty"`
	Work     string `json:"work,omitempty"`
	Occasion string `json:"occasion,omitempty"`
}

// Summarize coerces a loosely shaped product into a ProductSummary.
// FirestoreID wins over ID. The main image wins over the first gallery image,
// which wins over the flat Image field.
func Summarize(p Product) ProductSummary {
	id := p.FirestoreID
	if id == "" {
		id = p.ID
	}

	return ProductSummary{
		ID:       id,
		Name:     p.Name,
		Price:    string(p.Price),
		Image:    primaryImage(p),
		Category: p.Category,
		Fabric:   p.Fabric,
		Origin:   p.Origin,
		Work:     p.Work,
		Occasion: p.Occasion,
	}
}

func primaryImage(p Product) string {
	for _, img := range p.Images {
		if img.IsMain && img.URL != "" {
			return img.URL
		}
	}
	if len(p.Images) > 0 && p.Images[0].URL != "" {
		return p.Images[0].URL
	}
	return p.Image
}
