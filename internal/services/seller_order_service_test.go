package services_test

import (
	"context"
	"testing"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/repositories"
	"urbantales/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSellerOrderService() (*services.SellerOrderService, *MockOrderRepository, *MockProductRepository, *recordingPublisher) {
	orders := new(MockOrderRepository)
	products := new(MockProductRepository)
	publisher := &recordingPublisher{}
	svc := services.NewSellerOrderService(orders, products, publisher, quietLogger()).
		WithClock(func() time.Time { return policyNow })
	return svc, orders, products, publisher
}

// sharedOrders returns orders mixing items of seller A (a-1, a-2) and seller B (b-1).
func sharedOrders() []models.Order {
	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	return []models.Order{
		{
			ID: "o-old", PaymentMethod: "COD", CreatedAt: jan,
			Items: []models.OrderItem{
				{ProductID: "a-1", Price: 100, Quantity: 2, Status: models.StatusDelivered},
				{ProductID: "b-1", Price: 999, Quantity: 1, Status: models.StatusDelivered},
			},
		},
		{
			ID: "o-new", PaymentMethod: "card", PaymentStatus: "successful", CreatedAt: feb,
			Items: []models.OrderItem{
				{ProductID: "a-2", Price: 40.5, Quantity: 3, Status: models.StatusPlaced},
			},
		},
		{
			ID: "o-cod-pending", PaymentMethod: "cod", CreatedAt: feb,
			Items: []models.OrderItem{
				{ProductID: "a-1", Price: 100, Quantity: 1, Status: models.StatusShipped},
			},
		},
	}
}

func TestSellerOrderService_ListSellerOrders_PartialVisibility(t *testing.T) {
	svc, orders, products, _ := newSellerOrderService()
	ctx := context.Background()

	ids := []string{"a-1", "a-2"}
	products.On("IDsBySeller", ctx, "seller-a").Return(ids, nil).Once()
	orders.On("ListContainingProducts", ctx, ids).Return(sharedOrders(), nil).Once()

	views, err := svc.ListSellerOrders(ctx, "seller-a")

	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "o-old", views[2].ID, "newest first")
	for _, v := range views {
		for _, item := range v.Items {
			assert.NotEqual(t, "b-1", item.ProductID, "other seller's item leaked in order %s", v.ID)
		}
	}
}

func TestSellerOrderService_ListSellerOrders_NoProducts(t *testing.T) {
	svc, orders, products, _ := newSellerOrderService()
	ctx := context.Background()
	products.On("IDsBySeller", ctx, "seller-z").Return([]string{}, nil).Once()

	views, err := svc.ListSellerOrders(ctx, "seller-z")

	require.NoError(t, err)
	assert.Empty(t, views)
	orders.AssertNotCalled(t, "ListContainingProducts", mock.Anything, mock.Anything)
}

func TestSellerOrderService_UpdateItemStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("owner updates own item", func(t *testing.T) {
		svc, orders, products, publisher := newSellerOrderService()
		products.On("GetByID", ctx, "a-1").Return(&models.Product{ID: "a-1", SellerID: "seller-a"}, nil).Once()
		orders.On("UpdateItemStatus", ctx, "o-old", "a-1", models.StatusShipped, policyNow).Return(nil).Once()
		orders.On("GetByID", ctx, "o-old").Return(&sharedOrders()[0], nil).Once()

		view, err := svc.UpdateItemStatus(ctx, "seller-a", "o-old", "a-1", models.StatusShipped)

		require.NoError(t, err)
		require.Len(t, view.Items, 1)
		assert.Equal(t, "a-1", view.Items[0].ProductID)
		orders.AssertNotCalled(t, "MarkDelivered", mock.Anything, mock.Anything, mock.Anything)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, models.EventOrderItemStatus, publisher.events[0].Type)
	})

	t.Run("delivered stamps delivery time", func(t *testing.T) {
		svc, orders, products, _ := newSellerOrderService()
		products.On("GetByID", ctx, "a-1").Return(&models.Product{ID: "a-1", SellerID: "seller-a"}, nil).Once()
		orders.On("UpdateItemStatus", ctx, "o-old", "a-1", models.StatusDelivered, policyNow).Return(nil).Once()
		orders.On("MarkDelivered", ctx, "o-old", policyNow).Return(nil).Once()
		orders.On("GetByID", ctx, "o-old").Return(&sharedOrders()[0], nil).Twice()

		_, err := svc.UpdateItemStatus(ctx, "seller-a", "o-old", "a-1", models.StatusDelivered)

		require.NoError(t, err)
		orders.AssertExpectations(t)
	})

	t.Run("other seller's product is forbidden", func(t *testing.T) {
		svc, orders, products, publisher := newSellerOrderService()
		products.On("GetByID", ctx, "a-1").Return(&models.Product{ID: "a-1", SellerID: "seller-a"}, nil).Once()

		_, err := svc.UpdateItemStatus(ctx, "seller-b", "o-old", "a-1", models.StatusShipped)

		assert.True(t, apperror.Is(err, apperror.KindForbidden))
		orders.AssertNotCalled(t, "UpdateItemStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, publisher.events)
	})

	t.Run("partial delivery leaves delivery time unset", func(t *testing.T) {
		svc, orders, products, _ := newSellerOrderService()
		partial := sharedOrders()[0]
		partial.Items[1].Status = models.StatusShipped
		products.On("GetByID", ctx, "a-1").Return(&models.Product{ID: "a-1", SellerID: "seller-a"}, nil).Once()
		orders.On("UpdateItemStatus", ctx, "o-old", "a-1", models.StatusDelivered, policyNow).Return(nil).Once()
		orders.On("GetByID", ctx, "o-old").Return(&partial, nil).Once()

		_, err := svc.UpdateItemStatus(ctx, "seller-a", "o-old", "a-1", models.StatusDelivered)

		require.NoError(t, err)
		orders.AssertNotCalled(t, "MarkDelivered", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown product is forbidden", func(t *testing.T) {
		svc, orders, products, publisher := newSellerOrderService()
		products.On("GetByID", ctx, "no-such-product").Return(nil, apperror.NotFound("product no-such-product not found")).Once()

		_, err := svc.UpdateItemStatus(ctx, "seller-b", "o-old", "no-such-product", models.StatusShipped)

		assert.True(t, apperror.Is(err, apperror.KindForbidden))
		orders.AssertNotCalled(t, "UpdateItemStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, publisher.events)
	})

	t.Run("item missing from order", func(t *testing.T) {
		svc, orders, products, _ := newSellerOrderService()
		products.On("GetByID", ctx, "a-2").Return(&models.Product{ID: "a-2", SellerID: "seller-a"}, nil).Once()
		orders.On("UpdateItemStatus", ctx, "o-old", "a-2", models.StatusShipped, policyNow).
			Return(apperror.NotFound("item a-2 not found in order o-old")).Once()

		_, err := svc.UpdateItemStatus(ctx, "seller-a", "o-old", "a-2", models.StatusShipped)

		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("empty status", func(t *testing.T) {
		svc, _, products, _ := newSellerOrderService()
		_, err := svc.UpdateItemStatus(ctx, "seller-a", "o-old", "a-1", "")
		assert.True(t, apperror.Is(err, apperror.KindValidation))
		products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestSellerOrderService_ComputeTotals(t *testing.T) {
	svc, orders, products, _ := newSellerOrderService()
	ctx := context.Background()

	ids := []string{"a-1", "a-2"}
	products.On("IDsBySeller", ctx, "seller-a").Return(ids, nil)
	orders.On("ListContainingProducts", ctx, ids).Return(sharedOrders(), nil)

	first, err := svc.ComputeTotals(ctx, "seller-a")
	require.NoError(t, err)

	// COD delivered a-1 (2 x 100) plus prepaid successful a-2 (3 x 40.5).
	// The undelivered COD line and seller B's line do not count.
	assert.Equal(t, 5, first.Sold)
	assert.InDelta(t, 321.5, first.Earnings, 1e-9)

	second, err := svc.ComputeTotals(ctx, "seller-a")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSellerOrderService_MonthlySeries(t *testing.T) {
	svc, orders, products, _ := newSellerOrderService()
	ctx := context.Background()

	ids := []string{"a-1"}
	series := []models.MonthlyEarning{{Month: "1-2025", Earnings: 200}, {Month: "3-2025", Earnings: 50}}
	products.On("IDsBySeller", ctx, "seller-a").Return(ids, nil).Once()
	orders.On("MonthlyDeliveredEarnings", ctx, ids).Return(series, nil).Once()

	got, err := svc.MonthlySeries(ctx, "seller-a")

	require.NoError(t, err)
	assert.Equal(t, series, got)
}

func TestSellerOrderService_Stats(t *testing.T) {
	svc, orders, products, _ := newSellerOrderService()
	ctx := context.Background()

	ids := []string{"a-1", "a-2"}
	products.On("CountBySeller", ctx, "seller-a").Return(int64(2), nil).Once()
	products.On("IDsBySeller", ctx, "seller-a").Return(ids, nil).Once()
	orders.On("ListContainingProducts", ctx, ids).Return(sharedOrders(), nil).Once()

	stats, err := svc.Stats(ctx, "seller-a")

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Products)
	assert.Equal(t, 5, stats.Sold)
}

func TestSellerOrderService_DeliveryTimeFollowsLastSeller(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMemoryProductRepository()
	orders := repositories.NewMemoryOrderRepository()
	require.NoError(t, products.Create(ctx, &models.Product{ID: "a-1", SellerID: "seller-a", Name: "Vase", Price: 100}))
	require.NoError(t, products.Create(ctx, &models.Product{ID: "b-1", SellerID: "seller-b", Name: "Lamp", Price: 200}))

	dayZero := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	order := &models.Order{
		ID: "o-split", BuyerID: "buyer-1", Status: models.StatusPending, PaymentMethod: "COD", CreatedAt: dayZero,
		Items: []models.OrderItem{
			{ProductID: "a-1", Price: 100, Quantity: 1, Status: models.StatusPending},
			{ProductID: "b-1", Price: 200, Quantity: 1, Status: models.StatusPending},
		},
	}
	require.NoError(t, orders.Create(ctx, order))

	clock := dayZero
	now := func() time.Time { return clock }
	sellers := services.NewSellerOrderService(orders, products, &recordingPublisher{}, quietLogger()).WithClock(now)
	buyers := services.NewOrderService(orders, products, repositories.NewMemoryCartRepository(), &recordingPublisher{},
		services.NewPolicy(services.DefaultReturnWindowDays), quietLogger()).WithClock(now)

	_, err := sellers.UpdateItemStatus(ctx, "seller-a", "o-split", "a-1", models.StatusDelivered)
	require.NoError(t, err)
	stored, err := orders.GetByID(ctx, "o-split")
	require.NoError(t, err)
	assert.Nil(t, stored.DeliveredAt, "order is not delivered while seller B's item is pending")

	clock = dayZero.Add(6 * 24 * time.Hour)
	_, err = sellers.UpdateItemStatus(ctx, "seller-b", "o-split", "b-1", models.StatusDelivered)
	require.NoError(t, err)
	stored, err = orders.GetByID(ctx, "o-split")
	require.NoError(t, err)
	require.NotNil(t, stored.DeliveredAt)
	assert.True(t, clock.Equal(*stored.DeliveredAt))

	clock = clock.Add(time.Hour)
	returned, err := buyers.RequestReturn(ctx, "buyer-1", "o-split", "Lamp is dented")
	require.NoError(t, err)
	assert.Equal(t, models.ReturnRequested, returned.ReturnStatus)
}
