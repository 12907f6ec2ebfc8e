package search

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 9
	MaxLimit     = 100
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
)

// ParseSortKey maps s to a sort key. Empty and unrecognised values sort by
// newest first.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortOldest, SortPriceAsc, SortPriceDesc:
		return k
	}
	return SortNewest
}

// Count is a bedroom/bathroom constraint. OrMore turns it into a lower
// bound ("4+").
type Count struct {
	Value  int
	OrMore bool
}

func ParseCount(s string) (Count, error) {
	s = strings.TrimSpace(s)
	orMore := strings.HasSuffix(s, "+")
	n, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
	if err != nil {
		return Count{}, fmt.Errorf("%q is not a count", s)
	}
	return Count{Value: n, OrMore: orMore}, nil
}

func (c Count) String() string {
	if c.OrMore {
		return strconv.Itoa(c.Value) + "+"
	}
	return strconv.Itoa(c.Value)
}

func (c Count) matches(v *int) bool {
	if v == nil {
		return false
	}
	if c.OrMore {
		return *v >= c.Value
	}
	return *v == c.Value
}

// Filters is one search request. Zero-valued optional fields are
// unconstrained.
type Filters struct {
	Location     string
	MinPrice     *int64
	MaxPrice     *int64
	PropertyType models.PropertyType
	Bedrooms     *Count
	Bathrooms    *Count
	Amenities    []string
	SortBy       SortKey
	Page         int
	Limit        int
}

// NewFilters returns unconstrained filters on the first page.
func NewFilters() Filters {
	return Filters{SortBy: SortNewest, Page: DefaultPage, Limit: DefaultLimit}
}

// ParseFilters reads filters from query parameters. Malformed values are
// rejected here; cross-field rules are left to Validate.
func ParseFilters(q url.Values) (Filters, error) {
	f := NewFilters()
	f.Location = strings.TrimSpace(q.Get("location"))
	f.SortBy = ParseSortKey(q.Get("sortBy"))

	var err error
	if f.MinPrice, err = parsePrice(q, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(q, "maxPrice"); err != nil {
		return f, err
	}

	if raw := strings.TrimSpace(q.Get("propertyType")); raw != "" {
		t, ok := models.ParsePropertyType(raw)
		if !ok {
			return f, apperrors.Validation("unknown propertyType %q", raw)
		}
		f.PropertyType = t
	}

	if f.Bedrooms, err = parseCount(q, "bedrooms"); err != nil {
		return f, err
	}
	if f.Bathrooms, err = parseCount(q, "bathrooms"); err != nil {
		return f, err
	}

	f.Amenities = normalizeAmenities(q["amenities"])

	if f.Page, err = parsePositive(q, "page", DefaultPage); err != nil {
		return f, err
	}
	if f.Limit, err = parsePositive(q, "limit", DefaultLimit); err != nil {
		return f, err
	}
	return f, nil
}

func (f Filters) Validate() error {
	if f.Page < 1 {
		return apperrors.Validation("page must be a positive integer")
	}
	if f.Limit < 1 || f.Limit > MaxLimit {
		return apperrors.Validation("limit must be between 1 and %d", MaxLimit)
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return apperrors.Validation("minPrice must not be negative")
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return apperrors.Validation("maxPrice must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return apperrors.Validation("minPrice must not exceed maxPrice")
	}
	if f.PropertyType != "" {
		if _, ok := models.ParsePropertyType(string(f.PropertyType)); !ok {
			return apperrors.Validation("unknown propertyType %q", f.PropertyType)
		}
	}
	if f.Bedrooms != nil && f.Bedrooms.Value < 0 {
		return apperrors.Validation("bedrooms must not be negative")
	}
	if f.Bathrooms != nil && f.Bathrooms.Value < 0 {
		return apperrors.Validation("bathrooms must not be negative")
	}
	return nil
}

// Key is a canonical encoding of f. Equal filters always produce the same
// key regardless of parameter order.
func (f Filters) Key() string {
	v := url.Values{}
	if f.Location != "" {
		v.Set("location", strings.ToLower(f.Location))
	}
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.FormatInt(*f.MinPrice, 10))
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatInt(*f.MaxPrice, 10))
	}
	if f.PropertyType != "" {
		v.Set("propertyType", string(f.PropertyType))
	}
	if f.Bedrooms != nil {
		v.Set("bedrooms", f.Bedrooms.String())
	}
	if f.Bathrooms != nil {
		v.Set("bathrooms", f.Bathrooms.String())
	}
	if len(f.Amenities) > 0 {
		a := append([]string(nil), f.Amenities...)
		sort.Strings(a)
		v["amenities"] = a
	}
	v.Set("sortBy", string(ParseSortKey(string(f.SortBy))))
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	return v.Encode()
}

func parsePrice(q url.Values, name string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.Validation("%s must be an integer", name)
	}
	return &n, nil
}

func parseCount(q url.Values, name string) (*Count, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	c, err := ParseCount(raw)
	if err != nil {
		return nil, apperrors.Validation("%s: %v", name, err)
	}
	return &c, nil
}

func parsePositive(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.Validation("%s must be a positive integer", name)
	}
	return n, nil
}

// normalizeAmenities accepts repeated parameters and comma separated lists.
func normalizeAmenities(raw []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, r := range raw {
		for _, a := range strings.Split(r, ",") {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
