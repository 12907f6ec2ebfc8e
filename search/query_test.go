package search

import (
	"sort"
	"testing"
	"time"

	"github.com/dcode-github/cozycorner/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intp(n int) *int { return &n }

func TestBuildCompilesMongoFilter(t *testing.T) {
	min, max := int64(100), int64(900)
	f := NewFilters()
	f.Location = "a.b"
	f.MinPrice, f.MaxPrice = &min, &max
	f.PropertyType = "VILLA"
	f.Bedrooms = &Count{Value: 4, OrMore: true}
	f.Bathrooms = &Count{Value: 2}
	f.Amenities = []string{"Parking", "Gym"}

	q, err := Build(f)
	require.NoError(t, err)

	assert.Equal(t, bson.M{
		"location":     primitive.Regex{Pattern: `a\.b`, Options: "i"},
		"price":        bson.M{"$gte": int64(100), "$lte": int64(900)},
		"propertyType": models.Villa,
		"bedrooms":     bson.M{"$gte": 4},
		"bathrooms":    2,
		"amenities":    bson.M{"$all": []string{"Parking", "Gym"}},
	}, q.Filter())
}

func TestEmptyFiltersMatchEverything(t *testing.T) {
	q, err := Build(NewFilters())
	require.NoError(t, err)
	assert.Empty(t, q.Filter())
	assert.True(t, q.Matches(models.Property{}))
}

func TestSortKeys(t *testing.T) {
	cases := map[SortKey]bson.D{
		SortNewest:    {{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}},
		SortOldest:    {{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		SortPriceAsc:  {{Key: "price", Value: 1}, {Key: "_id", Value: 1}},
		SortPriceDesc: {{Key: "price", Value: -1}, {Key: "_id", Value: 1}},
		"bogus":       {{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}},
	}
	for key, want := range cases {
		f := NewFilters()
		f.SortBy = key
		q, err := Build(f)
		require.NoError(t, err)
		assert.Equal(t, want, q.Sort(), key)
	}
}

func TestPageWindow(t *testing.T) {
	f := NewFilters()
	f.Page, f.Limit = 3, 10
	q, err := Build(f)
	require.NoError(t, err)

	assert.EqualValues(t, 20, q.Skip)
	assert.EqualValues(t, 10, q.Limit)
	opts := q.FindOptions()
	assert.EqualValues(t, 20, *opts.Skip)
	assert.EqualValues(t, 10, *opts.Limit)

	assert.Equal(t, 0, q.TotalPages(0))
	assert.Equal(t, 1, q.TotalPages(10))
	assert.Equal(t, 3, q.TotalPages(21))
	assert.True(t, q.Beyond(20))
	assert.False(t, q.Beyond(21))

	page := q.Page(nil, 20)
	assert.NotNil(t, page.Properties)
	assert.Empty(t, page.Properties)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
}

func TestMatches(t *testing.T) {
	p := models.Property{
		Location:     "Baner, Pune",
		Price:        2500,
		PropertyType: models.Apartment,
		Bedrooms:     intp(5),
		Bathrooms:    intp(2),
		Amenities:    []string{"Parking", "Gym", "Pool"},
	}

	build := func(mut func(*Filters)) Query {
		f := NewFilters()
		mut(&f)
		q, err := Build(f)
		require.NoError(t, err)
		return q
	}

	assert.True(t, build(func(f *Filters) { f.Location = "pune" }).Matches(p))
	assert.False(t, build(func(f *Filters) { f.Location = "mumbai" }).Matches(p))
	assert.True(t, build(func(f *Filters) { f.PropertyType = "apartment" }).Matches(p))
	assert.False(t, build(func(f *Filters) { f.PropertyType = models.House }).Matches(p))
	assert.True(t, build(func(f *Filters) { f.Bedrooms = &Count{Value: 4, OrMore: true} }).Matches(p))
	assert.False(t, build(func(f *Filters) { f.Bedrooms = &Count{Value: 4} }).Matches(p))
	assert.True(t, build(func(f *Filters) { f.Bathrooms = &Count{Value: 2} }).Matches(p))
	assert.True(t, build(func(f *Filters) { f.Amenities = []string{"Gym", "Parking"} }).Matches(p))
	assert.False(t, build(func(f *Filters) { f.Amenities = []string{"Gym", "Lift"} }).Matches(p))

	noRooms := p
	noRooms.Bedrooms = nil
	assert.False(t, build(func(f *Filters) { f.Bedrooms = &Count{Value: 0, OrMore: true} }).Matches(noRooms))
}

func TestLessBreaksTiesByID(t *testing.T) {
	now := time.Now()
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	props := []models.Property{
		{ID: ids[2], Price: 100, CreatedAt: now},
		{ID: ids[0], Price: 100, CreatedAt: now},
		{ID: ids[1], Price: 300, CreatedAt: now.Add(-time.Hour)},
	}

	f := NewFilters()
	f.SortBy = SortPriceAsc
	q, err := Build(f)
	require.NoError(t, err)

	sort.Slice(props, func(i, j int) bool { return q.Less(props[i], props[j]) })
	assert.Equal(t, []primitive.ObjectID{ids[0], ids[2], ids[1]}, []primitive.ObjectID{props[0].ID, props[1].ID, props[2].ID})

	f.SortBy = SortOldest
	q, err = Build(f)
	require.NoError(t, err)
	sort.Slice(props, func(i, j int) bool { return q.Less(props[i], props[j]) })
	assert.Equal(t, ids[1], props[0].ID)
	assert.Equal(t, ids[0], props[1].ID)
}
