package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Favorite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Property  primitive.ObjectID `bson:"property" json:"property"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
