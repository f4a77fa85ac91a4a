package service

import (
	"strings"
	"testing"

	"mdla_service/internal/model"
	"mdla_service/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) product(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	p := decimal.RequireFromString(price)
	product, err := e.products.Create(ProductRequest{
		Name:     name,
		Category: model.CategorySparePart,
		Price:    &p,
		Stock:    stock,
	})
	require.NoError(t, err)
	return product
}

func (e *testEnv) stock(t *testing.T, id uint) int {
	t.Helper()
	product, err := e.products.Get(Actor{Role: model.Admin}, id)
	require.NoError(t, err)
	return product.Stock
}

func orderRequest(lines ...OrderLine) PlaceOrderRequest {
	return PlaceOrderRequest{
		Items:           lines,
		ShippingAddress: "12 rue des Almadies, Dakar",
		Phone:           "+221770000000",
	}
}

func TestMergeOrderLines(t *testing.T) {
	lines, err := mergeOrderLines([]OrderLine{
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 2},
		{ProductID: 3, Quantity: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, []OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 3, Quantity: 5}}, lines)

	_, err = mergeOrderLines(nil)
	assert.ErrorIs(t, err, util.ErrValidation)
	_, err = mergeOrderLines([]OrderLine{{ProductID: 1, Quantity: 0}})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestPlaceOrderTakesStock(t *testing.T) {
	env := newTestEnv(t)
	client := env.actor(t, model.Client)
	filter := env.product(t, "Filtre à huile", "7500.50", 10)
	pads := env.product(t, "Plaquettes de frein", "12000", 3)

	order, err := env.orders.Place(client, orderRequest(
		OrderLine{ProductID: filter.ID, Quantity: 2},
		OrderLine{ProductID: pads.ID, Quantity: 1},
		OrderLine{ProductID: filter.ID, Quantity: 1},
	))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.Reference, "CMD-"))
	assert.Len(t, order.Reference, 16)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("34501.5")), order.Total.String())
	require.Len(t, order.Items, 2)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, "Filtre à huile", order.Items[0].ProductName)

	assert.Equal(t, 7, env.stock(t, filter.ID))
	assert.Equal(t, 2, env.stock(t, pads.ID))
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv(t)
	client := env.actor(t, model.Client)
	plenty := env.product(t, "Bougie", "2500", 50)
	scarce := env.product(t, "Alternateur", "95000", 1)

	_, err := env.orders.Place(client, orderRequest(
		OrderLine{ProductID: plenty.ID, Quantity: 5},
		OrderLine{ProductID: scarce.ID, Quantity: 2},
	))
	assert.ErrorIs(t, err, util.ErrInsufficientStock)
	assert.Equal(t, 50, env.stock(t, plenty.ID))
	assert.Equal(t, 1, env.stock(t, scarce.ID))

	var count int64
	require.NoError(t, env.db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = env.orders.Place(client, orderRequest(OrderLine{ProductID: 9999, Quantity: 1}))
	assert.ErrorIs(t, err, util.ErrProductNotFound)

	_, err = env.orders.Place(Actor{}, orderRequest(OrderLine{ProductID: plenty.ID, Quantity: 1}))
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestPlaceOrderSkipsInactiveProducts(t *testing.T) {
	env := newTestEnv(t)
	client := env.actor(t, model.Client)
	product := env.product(t, "Ancien modèle", "1000", 5)

	price := product.Price
	_, err := env.products.Update(product.ID, ProductRequest{
		Name:     product.Name,
		Category: product.Category,
		Price:    &price,
		Stock:    product.Stock,
		Status:   model.ProductInactive,
	})
	require.NoError(t, err)

	_, err = env.orders.Place(client, orderRequest(OrderLine{ProductID: product.ID, Quantity: 1}))
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.products.Get(client, product.ID)
	assert.ErrorIs(t, err, util.ErrProductNotFound)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	client := env.actor(t, model.Client)
	product := env.product(t, "Batterie", "45000", 4)

	order, err := env.orders.Place(client, orderRequest(OrderLine{ProductID: product.ID, Quantity: 3}))
	require.NoError(t, err)
	assert.Equal(t, 1, env.stock(t, product.ID))

	cancelled, err := env.orders.Cancel(client, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	assert.Equal(t, 4, env.stock(t, product.ID))

	_, err = env.orders.Cancel(client, order.ID)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)
	assert.Equal(t, 4, env.stock(t, product.ID))
}

func TestOrderFulfilment(t *testing.T) {
	env := newTestEnv(t)
	client := env.actor(t, model.Client)
	transit := env.actor(t, model.Transit)
	product := env.product(t, "Pneu", "30000", 8)

	order, err := env.orders.Place(client, orderRequest(OrderLine{ProductID: product.ID, Quantity: 4}))
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(client, order.ID, model.OrderConfirmed)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = env.orders.UpdateStatus(transit, order.ID, model.OrderDelivered)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	_, err = env.orders.UpdateStatus(transit, order.ID, "lost")
	assert.ErrorIs(t, err, util.ErrValidation)

	confirmed, err := env.orders.UpdateStatus(transit, order.ID, model.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.OrderConfirmed, confirmed.Status)

	// customers can no longer withdraw a confirmed order
	_, err = env.orders.Cancel(client, order.ID)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	for _, next := range []model.OrderStatus{model.OrderShipped, model.OrderDelivered} {
		_, err = env.orders.UpdateStatus(transit, order.ID, next)
		require.NoError(t, err)
	}

	_, err = env.orders.Cancel(transit, order.ID)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)
	assert.Equal(t, 4, env.stock(t, product.ID))
}

func TestStaffCancelsConfirmedOrder(t *testing.T) {
	env := newTestEnv(t)
	client := env.actor(t, model.Client)
	admin := env.actor(t, model.Admin)
	product := env.product(t, "Radiateur", "60000", 2)

	order, err := env.orders.Place(client, orderRequest(OrderLine{ProductID: product.ID, Quantity: 2}))
	require.NoError(t, err)
	_, err = env.orders.UpdateStatus(admin, order.ID, model.OrderConfirmed)
	require.NoError(t, err)

	cancelled, err := env.orders.Cancel(admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	assert.Equal(t, 2, env.stock(t, product.ID))
}

func TestOrderVisibility(t *testing.T) {
	env := newTestEnv(t)
	alice := env.actor(t, model.Client)
	bob := env.actor(t, model.Client)
	transit := env.actor(t, model.Transit)
	product := env.product(t, "Essuie-glace", "3000", 10)

	order, err := env.orders.Place(alice, orderRequest(OrderLine{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = env.orders.Place(bob, orderRequest(OrderLine{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = env.orders.Get(bob, order.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = env.orders.Cancel(bob, order.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	got, err := env.orders.Get(transit, order.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, got.UserID)

	orders, total, err := env.orders.List(alice, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, order.ID, orders[0].ID)

	_, total, err = env.orders.List(transit, model.OrderPending, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, _, err = env.orders.List(alice, "lost", 1, 10)
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.orders.Get(alice, 9999)
	assert.ErrorIs(t, err, util.ErrOrderNotFound)
}
