package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/rent_system/services/rental/internal/models"
	"github.com/Skotchmaster/rent_system/services/rental/internal/transport"
)

type fakeIndex struct {
	indexed []uuid.UUID
	deleted []uuid.UUID
	hits    []uuid.UUID
	err     error
}

func (f *fakeIndex) IndexProperty(_ context.Context, p *models.Property) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) DeleteProperty(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchProperties(context.Context, string, int, int) (int64, []uuid.UUID, error) {
	return int64(len(f.hits)), f.hits, f.err
}

func TestPropertyService_CreateValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	owner := newUser("owner")

	tests := []struct {
		name string
		req  transport.CreatePropertyRequest
	}{
		{name: "empty title", req: transport.CreatePropertyRequest{Title: " ", Location: "Rome"}},
		{name: "empty location", req: transport.CreatePropertyRequest{Title: "Villa"}},
		{name: "negative price", req: transport.CreatePropertyRequest{Title: "Villa", Location: "Rome", PricePerNight: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.props.Create(context.Background(), owner, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPropertyService_GetIncludesStats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := newUser("owner")
	p := env.newProperty(t, owner)

	_, err := env.bookings.Create(ctx, newUser("renter"), bookReq(p.ID, 0, 2))
	require.NoError(t, err)
	_, err = env.reviews.Create(ctx, newUser("renter"), p.ID, transport.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	_, err = env.reviews.Create(ctx, newUser("renter"), p.ID, transport.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	got, err := env.props.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.EqualValues(t, 1, got.BookingCount)
	assert.InDelta(t, 4.5, got.AverageRating, 0.0001)

	_, err = env.props.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropertyService_PatchAndDelete(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner, stranger := newUser("owner"), newUser("owner")
	p := env.newProperty(t, owner)

	price := int64(12000)
	_, err := env.props.Patch(ctx, stranger, p.ID, transport.PatchPropertyRequest{PricePerNight: &price})
	assert.ErrorIs(t, err, ErrForbidden)

	neg := int64(-5)
	_, err = env.props.Patch(ctx, owner, p.ID, transport.PatchPropertyRequest{PricePerNight: &neg})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := env.props.Patch(ctx, owner, p.ID, transport.PatchPropertyRequest{PricePerNight: &price})
	require.NoError(t, err)
	assert.Equal(t, price, got.PricePerNight)

	_, err = env.bookings.Create(ctx, newUser("renter"), bookReq(p.ID, 0, 2))
	require.NoError(t, err)

	assert.ErrorIs(t, env.props.Delete(ctx, stranger, p.ID), ErrForbidden)
	require.NoError(t, env.props.Delete(ctx, owner, p.ID))

	_, err = env.props.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	left, err := env.repo.BookingsByProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPropertyService_ListAndSearch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := newUser("owner")

	for _, loc := range []string{"Lisbon", "Porto", "Lisbon"} {
		_, err := env.props.Create(ctx, owner, transport.CreatePropertyRequest{Title: "Flat", Location: loc, PricePerNight: 100})
		require.NoError(t, err)
	}

	total, items, err := env.props.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 2)

	mine, err := env.props.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	total, items, err = env.props.SearchProperties(ctx, "lisbon", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	_, _, err = env.props.SearchProperties(ctx, "  ", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPropertyService_UsesSearchIndex(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	idx := &fakeIndex{}
	env.props.Search = idx
	owner := newUser("owner")

	a := env.newProperty(t, owner)
	b := env.newProperty(t, owner)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, idx.indexed)

	idx.hits = []uuid.UUID{b.ID, uuid.New(), a.ID}
	_, items, err := env.props.SearchProperties(ctx, "flat", 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)

	idx.err = errors.New("cluster down")
	total, _, err := env.props.SearchProperties(ctx, "lisbon", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	require.NoError(t, env.props.Delete(ctx, owner, a.ID))
	assert.Equal(t, []uuid.UUID{a.ID}, idx.deleted)
}

func TestPropertyService_OwnerStats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner, other := newUser("owner"), newUser("owner")

	empty, err := env.props.OwnerStats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, transport.OwnerStats{}, *empty)

	villa := env.newProperty(t, owner)
	flat := env.newProperty(t, owner)
	elsewhere := env.newProperty(t, other)

	for i, pid := range []uuid.UUID{villa.ID, villa.ID, flat.ID, elsewhere.ID} {
		_, err := env.bookings.Create(ctx, newUser("renter"), bookReq(pid, i*3, i*3+2))
		require.NoError(t, err)
	}
	_, err = env.reviews.Create(ctx, newUser("renter"), flat.ID, transport.CreateReviewRequest{Rating: 3})
	require.NoError(t, err)
	_, err = env.reviews.Create(ctx, newUser("renter"), elsewhere.ID, transport.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	got, err := env.props.OwnerStats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, transport.OwnerStats{TotalProperties: 2, TotalBookings: 3, TotalReviews: 1}, *got)
}
