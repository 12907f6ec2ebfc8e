package services

import (
	"context"
	"testing"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFavorites(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	p := models.Property{Title: "Cabin", Price: 50, Landlord: primitive.NewObjectID()}
	require.NoError(t, st.Properties.Insert(ctx, &p))

	svc := NewFavoriteService(st.Favorites, st.Properties)
	me := models.Session{ID: primitive.NewObjectID(), Role: models.RoleTenant}

	ok, err := svc.IsFavorited(ctx, me, p.ID.Hex())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Add(ctx, me, p.ID.Hex())
	require.NoError(t, err)

	_, err = svc.Add(ctx, me, p.ID.Hex())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = svc.Add(ctx, me, primitive.NewObjectID().Hex())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	ok, err = svc.IsFavorited(ctx, me, p.ID.Hex())
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := svc.List(ctx, me)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cabin", list[0].Title)

	require.NoError(t, svc.Remove(ctx, me, p.ID.Hex()))
	err = svc.Remove(ctx, me, p.ID.Hex())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.IsFavorited(ctx, me, "bogus")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestRecommend(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	p := models.Property{Title: "Cabin", Price: 50, Landlord: primitive.NewObjectID()}
	require.NoError(t, st.Properties.Insert(ctx, &p))

	sender := models.User{Name: "Dev", Email: "dev@example.com", Role: models.RoleTenant}
	friend := models.User{Name: "Fay", Email: "fay@example.com", Role: models.RoleTenant}
	require.NoError(t, st.Users.Insert(ctx, &sender))
	require.NoError(t, st.Users.Insert(ctx, &friend))

	hook := &recordingHook{}
	svc := NewRecommendationService(st.Recommendations, st.Users, st.Properties, hook)
	me := models.Session{ID: sender.ID, Role: sender.Role}

	_, err := svc.Recommend(ctx, me, RecommendInput{PropertyID: p.ID.Hex(), RecipientEmail: "FAY@example.com"})
	require.NoError(t, err)

	events := hook.Events()
	require.Len(t, events, 1)
	assert.Equal(t, friend.ID, events[0].Recipient)
	assert.Equal(t, models.NotificationRecommendation, events[0].Type)
	assert.Equal(t, "Dev recommended Cabin to you", events[0].Message)

	list, err := svc.List(ctx, models.Session{ID: friend.ID, Role: friend.Role})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
	assert.Equal(t, sender.ID, list[0].RecommendedBy)

	_, err = svc.Recommend(ctx, me, RecommendInput{PropertyID: p.ID.Hex(), RecipientEmail: "ghost@example.com"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.Recommend(ctx, me, RecommendInput{PropertyID: p.ID.Hex(), RecipientEmail: "dev@example.com"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Len(t, hook.Events(), 1)
}

func TestContactSend(t *testing.T) {
	svc := NewContactService(store.NewMemory().Contacts)
	ctx := context.Background()

	c, err := svc.Send(ctx, models.Contact{Name: " Gil ", Email: "gil@example.com", Message: "Is it free?"})
	require.NoError(t, err)
	assert.False(t, c.ID.IsZero())
	assert.Equal(t, "Gil", c.Name)

	_, err = svc.Send(ctx, models.Contact{Name: "Gil", Email: "nope", Message: "hi"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.Send(ctx, models.Contact{Email: "gil@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name, message")
}
