package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyType string

const (
	Apartment PropertyType = "Apartment"
	House     PropertyType = "House"
	Villa     PropertyType = "Villa"
	Plot      PropertyType = "Plot"
	Studio    PropertyType = "Studio"
)

var propertyTypes = []PropertyType{Apartment, House, Villa, Plot, Studio}

// ParsePropertyType canonicalises s case-insensitively ("apartment",
// "APARTMENT" and "Apartment" all yield Apartment).
func ParsePropertyType(s string) (PropertyType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range propertyTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

type Property struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Price        int64              `bson:"price" json:"price"`
	Location     string             `bson:"location" json:"location"`
	PropertyType PropertyType       `bson:"propertyType" json:"propertyType"`
	Size         *float64           `bson:"size,omitempty" json:"size,omitempty"`
	Bedrooms     *int               `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms    *int               `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	Amenities    []string           `bson:"amenities" json:"amenities"`
	Images       []string           `bson:"images" json:"images"`
	Document     string             `bson:"document,omitempty" json:"document,omitempty"`
	Landlord     primitive.ObjectID `bson:"landlord" json:"landlord"`
	Verified     bool               `bson:"verified" json:"verified"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasAmenities reports whether p offers every amenity in want.
func (p Property) HasAmenities(want []string) bool {
	have := make(map[string]struct{}, len(p.Amenities))
	for _, a := range p.Amenities {
		have[a] = struct{}{}
	}
	for _, a := range want {
		if _, ok := have[a]; !ok {
			return false
		}
	}
	return true
}

// PropertyUpdate is a partial edit. Nil fields are left untouched; verified
// and landlord are deliberately absent.
type PropertyUpdate struct {
	Title        *string       `json:"title" validate:"omitempty,min=1"`
	Description  *string       `json:"description"`
	Price        *int64        `json:"price" validate:"omitempty,gt=0"`
	Location     *string       `json:"location" validate:"omitempty,min=1"`
	PropertyType *PropertyType `json:"propertyType"`
	Size         *float64      `json:"size" validate:"omitempty,gt=0"`
	Bedrooms     *int          `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms    *int          `json:"bathrooms" validate:"omitempty,gte=0"`
	Amenities    []string      `json:"amenities"`
	Images       []string      `json:"images"`
	Document     *string       `json:"document"`
}

// Fields returns the $set document for u, keyed by bson field name.
func (u PropertyUpdate) Fields() map[string]any {
	set := map[string]any{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.PropertyType != nil {
		set["propertyType"] = *u.PropertyType
	}
	if u.Size != nil {
		set["size"] = *u.Size
	}
	if u.Bedrooms != nil {
		set["bedrooms"] = *u.Bedrooms
	}
	if u.Bathrooms != nil {
		set["bathrooms"] = *u.Bathrooms
	}
	if u.Amenities != nil {
		set["amenities"] = u.Amenities
	}
	if u.Images != nil {
		set["images"] = u.Images
	}
	if u.Document != nil {
		set["document"] = *u.Document
	}
	return set
}

// Apply copies the non-nil fields of u onto p.
func (u PropertyUpdate) Apply(p *Property) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.PropertyType != nil {
		p.PropertyType = *u.PropertyType
	}
	if u.Size != nil {
		p.Size = u.Size
	}
	if u.Bedrooms != nil {
		p.Bedrooms = u.Bedrooms
	}
	if u.Bathrooms != nil {
		p.Bathrooms = u.Bathrooms
	}
	if u.Amenities != nil {
		p.Amenities = u.Amenities
	}
	if u.Images != nil {
		p.Images = u.Images
	}
	if u.Document != nil {
		p.Document = *u.Document
	}
}

type ResultPage struct {
	Properties  []Property `json:"properties"`
	Total       int64      `json:"total"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}
