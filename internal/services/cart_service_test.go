package services_test

import (
	"context"
	"testing"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/repositories"
	"urbantales/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartFixture(t *testing.T) (*services.CartService, string) {
	t.Helper()
	products := repositories.NewMemoryProductRepository()
	product := &models.Product{Name: "Block-print Quilt", Category: "Home", SellerID: "seller-a", Price: 1200, Images: []string{"https://img.example/quilt.jpg"}}
	require.NoError(t, products.Create(context.Background(), product))
	return services.NewCartService(repositories.NewMemoryCartRepository(), products), product.ID
}

func TestCartService_AddItemMerges(t *testing.T) {
	svc, productID := cartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "buyer-1", productID, 1)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "buyer-1", productID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 1200.0, cart.Items[0].Price)
	assert.Equal(t, "https://img.example/quilt.jpg", cart.Items[0].Image)
}

func TestCartService_AddItem_Invalid(t *testing.T) {
	svc, productID := cartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "buyer-1", productID, 0)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.AddItem(ctx, "buyer-1", "missing", 1)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCartService_UpdateQuantity(t *testing.T) {
	svc, productID := cartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "buyer-1", productID, 1)
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(ctx, "buyer-1", productID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	cart, err = svc.UpdateQuantity(ctx, "buyer-1", productID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.RemoveItem(ctx, "buyer-1", productID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCartService_Clear(t *testing.T) {
	svc, productID := cartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "buyer-1", productID, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "buyer-1"))

	cart, err := svc.GetCart(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
