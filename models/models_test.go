package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePropertyType(t *testing.T) {
	for _, in := range []string{"apartment", "APARTMENT", " Apartment "} {
		got, ok := ParsePropertyType(in)
		assert.True(t, ok, in)
		assert.Equal(t, Apartment, got)
	}
	got, ok := ParsePropertyType("studio")
	assert.True(t, ok)
	assert.Equal(t, Studio, got)

	_, ok = ParsePropertyType("castle")
	assert.False(t, ok)
}

func TestHasAmenities(t *testing.T) {
	p := Property{Amenities: []string{"Parking", "Gym"}}
	assert.True(t, p.HasAmenities(nil))
	assert.True(t, p.HasAmenities([]string{"Gym"}))
	assert.True(t, p.HasAmenities([]string{"Parking", "Gym"}))
	assert.False(t, p.HasAmenities([]string{"Parking", "Pool"}))
	assert.False(t, Property{Amenities: []string{"Parking"}}.HasAmenities([]string{"Parking", "Gym"}))
}

func TestPropertyUpdateFieldsAndApply(t *testing.T) {
	title := "New"
	price := int64(42)
	u := PropertyUpdate{Title: &title, Price: &price, Amenities: []string{}}

	assert.Equal(t, map[string]any{"title": "New", "price": int64(42), "amenities": []string{}}, u.Fields())

	p := Property{Title: "Old", Location: "Pune", Amenities: []string{"Gym"}}
	u.Apply(&p)
	assert.Equal(t, "New", p.Title)
	assert.EqualValues(t, 42, p.Price)
	assert.Equal(t, "Pune", p.Location)
	assert.Empty(t, p.Amenities)
}

func TestSessionRoles(t *testing.T) {
	s := Session{Role: RoleLandlord}
	assert.False(t, s.IsAdmin())
	assert.True(t, s.HasRole(RoleAdmin, RoleLandlord))
	assert.False(t, s.HasRole(RoleTenant))
	assert.True(t, RoleTenant.Valid())
	assert.False(t, Role("owner").Valid())
}
