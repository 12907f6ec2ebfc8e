package search

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/dcode-github/cozycorner/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Query is a validated search: the predicate set, the total order and the
// page window. The same Query compiles to a Mongo filter and evaluates in
// memory.
type Query struct {
	f     Filters
	Skip  int64
	Limit int64
}

func Build(f Filters) (Query, error) {
	if err := f.Validate(); err != nil {
		return Query{}, err
	}
	f.SortBy = ParseSortKey(string(f.SortBy))
	if f.PropertyType != "" {
		f.PropertyType, _ = models.ParsePropertyType(string(f.PropertyType))
	}
	return Query{
		f:     f,
		Skip:  int64(f.Page-1) * int64(f.Limit),
		Limit: int64(f.Limit),
	}, nil
}

func (q Query) Filters() Filters { return q.f }

func (q Query) Filter() bson.M {
	filter := bson.M{}
	if q.f.Location != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.f.Location), Options: "i"}
	}
	if q.f.MinPrice != nil || q.f.MaxPrice != nil {
		price := bson.M{}
		if q.f.MinPrice != nil {
			price["$gte"] = *q.f.MinPrice
		}
		if q.f.MaxPrice != nil {
			price["$lte"] = *q.f.MaxPrice
		}
		filter["price"] = price
	}
	if q.f.PropertyType != "" {
		filter["propertyType"] = q.f.PropertyType
	}
	if q.f.Bedrooms != nil {
		filter["bedrooms"] = countFilter(*q.f.Bedrooms)
	}
	if q.f.Bathrooms != nil {
		filter["bathrooms"] = countFilter(*q.f.Bathrooms)
	}
	if len(q.f.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": q.f.Amenities}
	}
	return filter
}

func countFilter(c Count) any {
	if c.OrMore {
		return bson.M{"$gte": c.Value}
	}
	return c.Value
}

// Sort is the primary key for the sort key followed by _id ascending, so
// equal keys page deterministically.
func (q Query) Sort() bson.D {
	switch q.f.SortBy {
	case SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	}
}

func (q Query) FindOptions() *options.FindOptions {
	return options.Find().SetSort(q.Sort()).SetSkip(q.Skip).SetLimit(q.Limit)
}

// Matches evaluates the predicate set against p.
func (q Query) Matches(p models.Property) bool {
	if q.f.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(q.f.Location)) {
		return false
	}
	if q.f.MinPrice != nil && p.Price < *q.f.MinPrice {
		return false
	}
	if q.f.MaxPrice != nil && p.Price > *q.f.MaxPrice {
		return false
	}
	if q.f.PropertyType != "" && p.PropertyType != q.f.PropertyType {
		return false
	}
	if q.f.Bedrooms != nil && !q.f.Bedrooms.matches(p.Bedrooms) {
		return false
	}
	if q.f.Bathrooms != nil && !q.f.Bathrooms.matches(p.Bathrooms) {
		return false
	}
	return p.HasAmenities(q.f.Amenities)
}

// Less reports whether a sorts before b.
func (q Query) Less(a, b models.Property) bool {
	switch q.f.SortBy {
	case SortOldest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case SortPriceAsc:
		if a.Price != b.Price {
			return a.Price < b.Price
		}
	case SortPriceDesc:
		if a.Price != b.Price {
			return a.Price > b.Price
		}
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// Beyond reports whether the page window starts past the last match, in
// which case there is nothing to fetch.
func (q Query) Beyond(total int64) bool {
	return q.Skip >= total
}

func (q Query) TotalPages(total int64) int {
	return int((total + q.Limit - 1) / q.Limit)
}

func (q Query) Page(properties []models.Property, total int64) models.ResultPage {
	if properties == nil {
		properties = []models.Property{}
	}
	return models.ResultPage{
		Properties:  properties,
		Total:       total,
		CurrentPage: q.f.Page,
		TotalPages:  q.TotalPages(total),
	}
}
