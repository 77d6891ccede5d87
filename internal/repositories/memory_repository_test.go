package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryNotificationRepository_ListNewestFirstWithLimit(t *testing.T) {
	repo := NewMemoryNotificationRepository()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 60; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			SellerID: "seller-a",
			Title:    fmt.Sprintf("n%d", i),
			Time:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := repo.ListBySeller(ctx, "seller-a", 50)
	require.NoError(t, err)
	require.Len(t, list, 50)
	assert.Equal(t, "n59", list[0].Title)
	assert.Equal(t, "n10", list[49].Title)

	none, err := repo.ListBySeller(ctx, "seller-b", 50)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryReviewRepository_OnePerUserAndProduct(t *testing.T) {
	repo := NewMemoryReviewRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Review{ProductID: "p-1", UserID: "u-1", Rating: 4}))
	err := repo.Create(ctx, &models.Review{ProductID: "p-1", UserID: "u-1", Rating: 2})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	require.NoError(t, repo.Create(ctx, &models.Review{ProductID: "p-2", UserID: "u-1", Rating: 5}))
	require.NoError(t, repo.Create(ctx, &models.Review{ProductID: "p-1", UserID: "u-2", Rating: 5}))

	counts, err := repo.RatingCounts(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{4: 1, 5: 1}, counts)
}

func TestMemoryReviewRepository_ToggleLike(t *testing.T) {
	repo := NewMemoryReviewRepository()
	ctx := context.Background()

	review := &models.Review{ProductID: "p-1", UserID: "u-1", Rating: 4}
	require.NoError(t, repo.Create(ctx, review))

	liked, err := repo.ToggleLike(ctx, review.ID, "u-2")
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Helpful)
	assert.Equal(t, []string{"u-2"}, liked.LikedBy)

	unliked, err := repo.ToggleLike(ctx, review.ID, "u-2")
	require.NoError(t, err)
	assert.Zero(t, unliked.Helpful)
	assert.Empty(t, unliked.LikedBy)

	_, err = repo.ToggleLike(ctx, "missing", "u-2")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestMemoryReviewRepository_AddReply(t *testing.T) {
	repo := NewMemoryReviewRepository()
	ctx := context.Background()

	review := &models.Review{ProductID: "p-1", UserID: "u-1", Rating: 4}
	require.NoError(t, repo.Create(ctx, review))

	updated, err := repo.AddReply(ctx, review.ID, models.Reply{ID: "r-1", UserID: "u-2", Text: "Agreed"})
	require.NoError(t, err)
	require.Len(t, updated.Replies, 1)

	updated.Replies[0].Text = "mutated"
	stored, err := repo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "Agreed", stored.Replies[0].Text)
}

func TestMemoryProductRepository_Scoping(t *testing.T) {
	repo := NewMemoryProductRepository()
	ctx := context.Background()

	a1 := &models.Product{Name: "Vase", Category: "Home", SellerID: "seller-a"}
	a2 := &models.Product{Name: "Scarf", Category: "Apparel", SellerID: "seller-a"}
	b1 := &models.Product{Name: "Lamp", Category: "home", SellerID: "seller-b"}
	for _, p := range []*models.Product{a1, a2, b1} {
		require.NoError(t, repo.Create(ctx, p))
	}

	ids, err := repo.IDsBySeller(ctx, "seller-a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a1.ID, a2.ID}, ids)

	count, err := repo.CountBySeller(ctx, "seller-b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	owners, err := repo.OwnersOf(ctx, []string{a1.ID, b1.ID, "unknown"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{a1.ID: "seller-a", b1.ID: "seller-b"}, owners)

	home, err := repo.ListByCategory(ctx, "HOME")
	require.NoError(t, err)
	assert.Len(t, home, 2)
}
