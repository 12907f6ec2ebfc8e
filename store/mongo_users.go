package store

import (
	"context"
	"strings"

	"github.com/dcode-github/cozycorner/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoUsers struct {
	coll *mongo.Collection
}

func (s *mongoUsers) Insert(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(u.Email)
	_, err := s.coll.InsertOne(ctx, u)
	return translate(err)
}

func (s *mongoUsers) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, translate(err)
}

func (s *mongoUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	return u, translate(err)
}

type mongoContacts struct {
	coll *mongo.Collection
}

func (s *mongoContacts) Insert(ctx context.Context, c *models.Contact) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, c)
	return translate(err)
}
