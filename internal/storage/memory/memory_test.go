package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/user-api/internal/models"
	"github.com/pribylovaa/user-api/internal/storage"
)

func newUser(email string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test Name",
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSaveUser_And_Lookups(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()
	u := newUser("user@example.com")

	require.NoError(t, st.SaveUser(ctx, u))

	got, err := st.UserByEmail(ctx, "USER@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)

	exists, err := st.UserExists(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = st.UserExists(ctx, "other@example.com")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSaveUser_Duplicates(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()
	u := newUser("user@example.com")
	require.NoError(t, st.SaveUser(ctx, u))

	require.ErrorIs(t, st.SaveUser(ctx, newUser("User@Example.com")), storage.ErrAlreadyExists)

	sameID := newUser("second@example.com")
	sameID.ID = u.ID
	require.ErrorIs(t, st.SaveUser(ctx, sameID), storage.ErrAlreadyExists)
}

func TestLookups_NotFound_And_CanceledContext(t *testing.T) {
	t.Parallel()

	st := New()

	_, err := st.UserByEmail(context.Background(), "absent@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByToken(context.Background(), "nope")
	require.ErrorIs(t, err, storage.ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = st.UserByEmail(ctx, "absent@example.com")
	require.ErrorIs(t, err, context.Canceled)
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()
	u := newUser("user@example.com")
	require.NoError(t, st.SaveUser(ctx, u))

	upd := *u
	upd.Name = "Renamed"
	upd.PasswordHash = "new"
	upd.Email = "ignored@example.com"
	require.NoError(t, st.UpdateUser(ctx, &upd))

	got, err := st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)
	require.Equal(t, "new", got.PasswordHash)
	require.Equal(t, "user@example.com", got.Email)

	require.ErrorIs(t, st.UpdateUser(ctx, newUser("ghost@example.com")), storage.ErrNotFound)
}

func TestGetOrCreateToken(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()
	a, b := newUser("a@example.com"), newUser("b@example.com")
	require.NoError(t, st.SaveUser(ctx, a))
	require.NoError(t, st.SaveUser(ctx, b))

	first, err := st.GetOrCreateToken(ctx, &models.Token{Key: "k1", UserID: a.ID})
	require.NoError(t, err)
	require.Equal(t, "k1", first.Key)

	again, err := st.GetOrCreateToken(ctx, &models.Token{Key: "k2", UserID: a.ID})
	require.NoError(t, err)
	require.Equal(t, "k1", again.Key)

	_, err = st.GetOrCreateToken(ctx, &models.Token{Key: "k1", UserID: b.ID})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	owner, err := st.UserByToken(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, a.ID, owner.ID)
}

// TestGetOrCreateToken_Concurrent — конкурентные вызовы для одного пользователя
// получают один и тот же ключ.
func TestGetOrCreateToken_Concurrent(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()
	u := newUser("race@example.com")
	require.NoError(t, st.SaveUser(ctx, u))

	const n = 16
	keys := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := st.GetOrCreateToken(ctx, &models.Token{Key: uuid.NewString(), UserID: u.ID})
			if err == nil {
				keys[i] = tok.Key
			}
		}(i)
	}
	wg.Wait()

	for _, k := range keys {
		require.Equal(t, keys[0], k)
	}
	require.NotEmpty(t, keys[0])
}
