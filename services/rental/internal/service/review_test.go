package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/rent_system/services/rental/internal/transport"
)

func TestReviewService(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner, author, other := newUser("owner"), newUser("renter"), newUser("renter")
	p := env.newProperty(t, owner)

	_, err := env.reviews.Create(ctx, author, p.ID, transport.CreateReviewRequest{Rating: 6})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.reviews.Create(ctx, owner, p.ID, transport.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.reviews.Create(ctx, author, uuid.New(), transport.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrNotFound)

	rv, err := env.reviews.Create(ctx, author, p.ID, transport.CreateReviewRequest{Rating: 3, Comment: "ok"})
	require.NoError(t, err)
	assert.Nil(t, rv.ModifiedAt)

	rating := 4.0
	_, err = env.reviews.Patch(ctx, other, rv.ID, transport.PatchReviewRequest{Rating: &rating})
	assert.ErrorIs(t, err, ErrForbidden)

	patched, err := env.reviews.Patch(ctx, author, rv.ID, transport.PatchReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 4.0, patched.Rating)
	assert.NotNil(t, patched.ModifiedAt)

	byProp, err := env.reviews.ListByProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, byProp, 1)

	byUser, err := env.reviews.ListByUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	assert.ErrorIs(t, env.reviews.Delete(ctx, other, rv.ID), ErrForbidden)
	require.NoError(t, env.reviews.Delete(ctx, author, rv.ID))
	assert.ErrorIs(t, env.reviews.Delete(ctx, author, rv.ID), ErrNotFound)
}
