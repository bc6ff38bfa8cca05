package viewing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateAndGet(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			created := time.Date(2024, 3, 1, 12, 0, 0, 0, testZone)
			first := seedSession(t, store, "Ada", "1234-5678", created, nil, nil)
			second := seedSession(t, store, "Bob", "123-4567", created, nil, nil)
			assert.NotEqual(t, first.ID, second.ID)

			got, err := store.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "Ada", got.Name)
			assert.Equal(t, "1234-5678", got.UniqueIdentifier)
			assert.Equal(t, first.ImageURL, got.ImageURL)
			assert.Nil(t, got.UserGuess)
			assert.Nil(t, got.Rating)
			assert.True(t, got.CreatedDate.Equal(created), "created %v, got %v", created, got.CreatedDate)

			_, err = store.Get(ctx, second.ID+100)
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestStoreRejectsDuplicateIdentifier(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			now := time.Date(2024, 3, 1, 12, 0, 0, 0, testZone)
			seedSession(t, store, "Ada", "1234-56", now, nil, nil)

			err := store.Create(context.Background(), &Session{
				ImageURL:         "https://images.example/dup.jpg",
				Name:             "Bob",
				UniqueIdentifier: "1234-56",
				CreatedDate:      now,
			})
			assert.ErrorIs(t, err, ErrDuplicateIdentifier)
		})
	}
}

func TestStoreFindByUniqueIdentifier(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			s := seedSession(t, store, "Ada", "4321-8765", time.Now().In(testZone), nil, nil)

			got, err := store.FindByUniqueIdentifier(ctx, "4321-8765")
			require.NoError(t, err)
			assert.Equal(t, s.ID, got.ID)

			_, err = store.FindByUniqueIdentifier(ctx, "0000-0000")
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestStoreFindLatestByName(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			base := time.Date(2024, 3, 1, 12, 0, 0, 0, testZone)
			seedSession(t, store, "Ada", "1111-1111", base, nil, nil)
			latest := seedSession(t, store, "Ada", "2222-2222", base.Add(time.Minute), nil, nil)
			seedSession(t, store, "Bob", "3333-3333", base.Add(2*time.Minute), nil, nil)

			got, err := store.FindLatestByName(ctx, "Ada")
			require.NoError(t, err)
			assert.Equal(t, latest.ID, got.ID)

			_, err = store.FindLatestByName(ctx, "Cy")
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			s := seedSession(t, store, "Ada", "1234-5678", time.Now().In(testZone), nil, nil)

			require.NoError(t, store.Update(ctx, s.ID, Changes{UserGuess: stringPtr("a red barn")}))
			require.NoError(t, store.Update(ctx, s.ID, Changes{Rating: intPtr(3)}))
			require.NoError(t, store.Update(ctx, s.ID, Changes{Rating: intPtr(5)}))

			got, err := store.Get(ctx, s.ID)
			require.NoError(t, err)
			require.NotNil(t, got.UserGuess)
			require.NotNil(t, got.Rating)
			assert.Equal(t, "a red barn", *got.UserGuess)
			assert.Equal(t, 5, *got.Rating)

			err = store.Update(ctx, s.ID+100, Changes{Rating: intPtr(2)})
			assert.ErrorIs(t, err, ErrSessionNotFound)
			err = store.Update(ctx, s.ID+100, Changes{})
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestStoreDeleteWhere(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			cutoff := time.Date(2024, 3, 1, 12, 0, 0, 0, testZone)
			guess := stringPtr("a lighthouse")
			missing := seedSession(t, store, "Ada", "1000-1000", cutoff, nil, nil)
			blank := seedSession(t, store, "Ada", "1000-1001", cutoff, stringPtr("   "), nil)
			oldLow := seedSession(t, store, "Bob", "1000-1002", cutoff.Add(-time.Hour), guess, intPtr(1))
			edgeLow := seedSession(t, store, "Bob", "1000-1003", cutoff, guess, intPtr(1))
			newLow := seedSession(t, store, "Bob", "1000-1004", cutoff.Add(time.Second), guess, intPtr(1))
			oldHigh := seedSession(t, store, "Cy", "1000-1005", cutoff.Add(-time.Hour), guess, intPtr(4))
			oldUnrated := seedSession(t, store, "Cy", "1000-1006", cutoff.Add(-time.Hour), guess, nil)

			deleted, err := store.DeleteWhere(ctx, Criteria{})
			require.NoError(t, err)
			assert.Zero(t, deleted)

			deleted, err = store.DeleteWhere(ctx, Criteria{Rating: intPtr(1), CreatedAtOrBefore: cutoff})
			require.NoError(t, err)
			assert.EqualValues(t, 2, deleted)

			deleted, err = store.DeleteWhere(ctx, Criteria{MissingGuess: true})
			require.NoError(t, err)
			assert.EqualValues(t, 2, deleted)

			deleted, err = store.DeleteWhere(ctx, Criteria{MissingGuess: true})
			require.NoError(t, err)
			assert.Zero(t, deleted)

			for _, gone := range []*Session{missing, blank, oldLow, edgeLow} {
				_, err := store.Get(ctx, gone.ID)
				assert.ErrorIs(t, err, ErrSessionNotFound, gone.UniqueIdentifier)
			}
			for _, kept := range []*Session{newLow, oldHigh, oldUnrated} {
				_, err := store.Get(ctx, kept.ID)
				assert.NoError(t, err, kept.UniqueIdentifier)
			}

			deleted, err = store.DeleteWhere(ctx, Criteria{ID: oldHigh.ID})
			require.NoError(t, err)
			assert.EqualValues(t, 1, deleted)
		})
	}
}

func TestStoreListOrdering(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			base := time.Date(2024, 3, 1, 12, 0, 0, 0, testZone)
			a := seedSession(t, store, "Cy", "3000-3000", base, stringPtr("boat"), intPtr(2))
			b := seedSession(t, store, "Ada", "1000-1000", base.Add(time.Minute), stringPtr("tree"), nil)
			c := seedSession(t, store, "Bob", "2000-2000", base.Add(2*time.Minute), stringPtr("cat"), intPtr(5))

			cases := []struct {
				field SortField
				dir   Direction
				want  []uint
			}{
				{SortByCreatedDate, Descending, []uint{c.ID, b.ID, a.ID}},
				{SortByCreatedDate, Ascending, []uint{a.ID, b.ID, c.ID}},
				{SortByName, Ascending, []uint{b.ID, c.ID, a.ID}},
				{SortByUniqueIdentifier, Descending, []uint{a.ID, c.ID, b.ID}},
				{SortByUserGuess, Ascending, []uint{a.ID, c.ID, b.ID}},
				{SortByRating, Ascending, []uint{a.ID, c.ID, b.ID}},
				{SortByRating, Descending, []uint{b.ID, c.ID, a.ID}},
				{SortField("image_url; DROP TABLE rv_sessions"), Direction("sideways"), []uint{c.ID, b.ID, a.ID}},
			}
			for _, tc := range cases {
				list, err := store.List(ctx, tc.field, tc.dir)
				require.NoError(t, err)
				got := make([]uint, 0, len(list))
				for _, s := range list {
					got = append(got, s.ID)
				}
				assert.Equal(t, tc.want, got, "%s %s", tc.field, tc.dir)
			}
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	s := seedSession(t, store, "Ada", "1234-5678", time.Now(), stringPtr("sun"), intPtr(2))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	*got.UserGuess = "moon"
	*got.Rating = 4

	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "sun", *again.UserGuess)
	assert.Equal(t, 2, *again.Rating)
}

func TestGormStoreWritesAuditEvents(t *testing.T) {
	store := newGormTestStore(t)
	ctx := context.Background()
	s := seedSession(t, store, "Ada", "1234-5678", time.Now().In(testZone), nil, nil)
	require.NoError(t, store.Update(ctx, s.ID, Changes{UserGuess: stringPtr("a bridge")}))
	_, err := store.DeleteWhere(ctx, Criteria{ID: s.ID})
	require.NoError(t, err)

	var types []string
	require.NoError(t, store.db.Table("events").Order("id ASC").Pluck("type", &types).Error)
	assert.Equal(t, []string{"session_created", "session_updated", "sessions_deleted"}, types)
}

func TestGormStoreReadsCreatedDateInLocation(t *testing.T) {
	store := newGormTestStore(t)
	created := time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC)
	s := seedSession(t, store, "Ada", "1234-5679", created.In(testZone), stringPtr("x"), nil)

	got, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedDate.Equal(created))
	assert.Equal(t, testZone, got.CreatedDate.Location())

	var raw string
	require.NoError(t, store.db.Raw("SELECT CAST(created_date AS TEXT) FROM rv_sessions WHERE id = ?", s.ID).Scan(&raw).Error)
	assert.Contains(t, raw, "07:30:00")
	assert.NotContains(t, raw, "+05:00")
}

func TestGormStoreGetZeroID(t *testing.T) {
	store := newGormTestStore(t)
	_, err := store.Get(context.Background(), 0)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}
