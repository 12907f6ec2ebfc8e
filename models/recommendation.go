package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Recommendation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromUser  primitive.ObjectID `bson:"fromUser" json:"fromUser"`
	ToUser    primitive.ObjectID `bson:"toUser" json:"toUser"`
	Property  primitive.ObjectID `bson:"property" json:"property"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// RecommendedProperty is a property joined with whoever recommended it.
type RecommendedProperty struct {
	Property      `bson:",inline"`
	RecommendedBy primitive.ObjectID `bson:"recommendedBy" json:"recommendedBy"`
}
