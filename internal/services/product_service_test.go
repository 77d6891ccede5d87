package services_test

import (
	"context"
	"testing"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/repositories"
	"urbantales/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_CreateProduct(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	svc := services.NewProductService(repo)
	ctx := context.Background()

	product := &models.Product{ID: "client-chosen", Name: "  Terracotta Vase ", Category: "Home", Price: 499, Stock: 3}
	require.NoError(t, svc.CreateProduct(ctx, "seller-a", product))

	assert.NotEqual(t, "client-chosen", product.ID)
	assert.Equal(t, "seller-a", product.SellerID)
	assert.Equal(t, "Terracotta Vase", product.Name)

	byCategory, err := svc.ListByCategory(ctx, "home")
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)
}

func TestProductService_ListByCategory_Blank(t *testing.T) {
	svc := services.NewProductService(new(MockProductRepository))

	_, err := svc.ListByCategory(context.Background(), "   ")

	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestProductService_SellerScoping(t *testing.T) {
	repo := new(MockProductRepository)
	svc := services.NewProductService(repo)
	ctx := context.Background()

	owned := &models.Product{ID: "p-1", SellerID: "seller-a", Name: "Vase", Category: "Home", Price: 10}
	repo.On("GetByID", ctx, "p-1").Return(owned, nil)

	t.Run("owner reads", func(t *testing.T) {
		got, err := svc.GetSellerProduct(ctx, "seller-a", "p-1")
		require.NoError(t, err)
		assert.Equal(t, "p-1", got.ID)
	})

	t.Run("other seller sees not found", func(t *testing.T) {
		_, err := svc.GetSellerProduct(ctx, "seller-b", "p-1")
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("other seller cannot update", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, "seller-b", "p-1", &models.Product{Name: "Stolen"})
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("other seller cannot delete", func(t *testing.T) {
		err := svc.DeleteProduct(ctx, "seller-b", "p-1")
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProduct_KeepsIdentity(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	svc := services.NewProductService(repo)
	ctx := context.Background()

	product := &models.Product{Name: "Vase", Category: "Home", Price: 10, Stock: 1}
	require.NoError(t, svc.CreateProduct(ctx, "seller-a", product))

	updated, err := svc.UpdateProduct(ctx, "seller-a", product.ID, &models.Product{ID: "other", SellerID: "seller-b", Name: "Tall Vase", Category: "Home", Price: 12})
	require.NoError(t, err)

	assert.Equal(t, product.ID, updated.ID)
	assert.Equal(t, "seller-a", updated.SellerID)
	assert.Equal(t, product.CreatedAt, updated.CreatedAt)

	stored, err := svc.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tall Vase", stored.Name)
}
