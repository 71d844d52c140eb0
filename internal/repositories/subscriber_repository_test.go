package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbapte/portfolio-api/internal/storage"
	"github.com/hbapte/portfolio-api/models"
)

func newSubscriberRepo(t *testing.T) *SubscriberRepository {
	t.Helper()
	store := storage.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	return NewSubscriberRepository(store)
}

func TestSubscriberCreateAndFind(t *testing.T) {
	repo := newSubscriberRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateSubscriberInput{Email: "reader@example.com", Name: "Reader"})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriberStatusActive, created.Status)

	found, err := repo.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.Create(ctx, CreateSubscriberInput{Email: "reader@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSubscriberUnsubscribe(t *testing.T) {
	repo := newSubscriberRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateSubscriberInput{Email: "reader@example.com"})
	require.NoError(t, err)

	found, err := repo.Unsubscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.True(t, found)

	sub, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriberStatusUnsubscribed, sub.Status)
	assert.False(t, sub.UnsubscribedAt.IsZero())
}

func TestSubscriberUnsubscribeUnknown(t *testing.T) {
	repo := newSubscriberRepo(t)

	found, err := repo.Unsubscribe(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSubscriberFindByStatus(t *testing.T) {
	repo := newSubscriberRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, CreateSubscriberInput{Email: fmt.Sprintf("s%d@example.com", i)})
		require.NoError(t, err)
	}
	_, err := repo.Unsubscribe(ctx, "s1@example.com")
	require.NoError(t, err)

	active, err := repo.FindByStatus(ctx, models.SubscriberStatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	gone, err := repo.FindByStatus(ctx, models.SubscriberStatusUnsubscribed)
	require.NoError(t, err)
	require.Len(t, gone, 1)
	assert.Equal(t, "s1@example.com", gone[0].Email)
}

func TestSubscriberListSorted(t *testing.T) {
	repo := newSubscriberRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, CreateSubscriberInput{Email: fmt.Sprintf("s%d@example.com", i)})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	page, total, err := repo.ListSorted(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "s4@example.com", page[0].Email)
	assert.Equal(t, "s3@example.com", page[1].Email)

	page, _, err = repo.ListSorted(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "s0@example.com", page[0].Email)

	page, _, err = repo.ListSorted(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestSubscriberDeleteClearsIndex(t *testing.T) {
	repo := newSubscriberRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateSubscriberInput{Email: "reader@example.com"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, created.ID))

	found, err := repo.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Nil(t, found)
}
