package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Session identifies the authenticated caller of a request. It is resolved
// once from the bearer token and passed explicitly to every service call.
type Session struct {
	ID   primitive.ObjectID
	Role Role
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

func (s Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
