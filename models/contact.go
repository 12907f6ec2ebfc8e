package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Contact struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name      string              `bson:"name" json:"name" validate:"required"`
	Email     string              `bson:"email" json:"email" validate:"required,email"`
	Message   string              `bson:"message" json:"message" validate:"required"`
	Property  *primitive.ObjectID `bson:"property,omitempty" json:"propertyId,omitempty"`
	Landlord  *primitive.ObjectID `bson:"landlord,omitempty" json:"landlordId,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
