package features

import (
	"context"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olistfeatures/internal/dataset"
)

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	require.NoError(t, err)
	return parsed
}

func tsp(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed := ts(t, value)
	return &parsed
}

// featureTestDataset builds a small snapshot with two delivered orders,
// one undelivered order, a multi-seller basket and a duplicate review
func featureTestDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	return &dataset.Dataset{
		Customers: []dataset.Customer{
			{CustomerID: "c1", UniqueID: "u1", ZipPrefix: "01000", City: "sao paulo", State: "SP"},
			{CustomerID: "c2", UniqueID: "u2", ZipPrefix: "20000", City: "rio de janeiro", State: "RJ"},
		},
		Orders: []dataset.Order{
			{
				OrderID: "o1", CustomerID: "c1", Status: "delivered",
				PurchaseTimestamp:     ts(t, "2018-01-01 10:00:00"),
				ApprovedAt:            tsp(t, "2018-01-01 11:00:00"),
				DeliveredCarrierDate:  tsp(t, "2018-01-02 09:00:00"),
				DeliveredCustomerDate: tsp(t, "2018-01-06 10:00:00"),
				EstimatedDeliveryDate: ts(t, "2018-01-08 10:00:00"),
			},
			{
				OrderID: "o2", CustomerID: "c2", Status: "delivered",
				PurchaseTimestamp:     ts(t, "2018-02-01 10:00:00"),
				ApprovedAt:            tsp(t, "2018-02-01 12:00:00"),
				DeliveredCarrierDate:  tsp(t, "2018-02-03 10:00:00"),
				DeliveredCustomerDate: tsp(t, "2018-02-11 10:00:00"),
				EstimatedDeliveryDate: ts(t, "2018-02-08 10:00:00"),
			},
			{
				OrderID: "o3", CustomerID: "c1", Status: "shipped",
				PurchaseTimestamp:     ts(t, "2018-03-01 10:00:00"),
				ApprovedAt:            tsp(t, "2018-03-01 11:00:00"),
				DeliveredCarrierDate:  tsp(t, "2018-03-02 10:00:00"),
				EstimatedDeliveryDate: ts(t, "2018-03-10 10:00:00"),
			},
		},
		OrderItems: []dataset.OrderItem{
			{OrderID: "o1", ItemID: 1, ProductID: "p1", SellerID: "s1", ShippingLimitDate: ts(t, "2018-01-03 00:00:00"), Price: 100, FreightValue: 10},
			{OrderID: "o1", ItemID: 2, ProductID: "p1", SellerID: "s1", ShippingLimitDate: ts(t, "2018-01-03 00:00:00"), Price: 100, FreightValue: 10},
			{OrderID: "o2", ItemID: 1, ProductID: "p2", SellerID: "s2", ShippingLimitDate: ts(t, "2018-02-03 00:00:00"), Price: 300, FreightValue: 30},
			{OrderID: "o2", ItemID: 2, ProductID: "p1", SellerID: "s1", ShippingLimitDate: ts(t, "2018-02-03 00:00:00"), Price: 200, FreightValue: 20},
			{OrderID: "o3", ItemID: 1, ProductID: "p2", SellerID: "s2", ShippingLimitDate: ts(t, "2018-03-04 00:00:00"), Price: 50, FreightValue: 5},
		},
		OrderReviews: []dataset.Review{
			{ReviewID: "r1", OrderID: "o1", Score: 5},
			{ReviewID: "r2", OrderID: "o1", Score: 1}, // second review on o1, ignored
			{ReviewID: "r3", OrderID: "o2", Score: 1},
		},
		Products: []dataset.Product{
			{
				ProductID: "p1", CategoryName: "cama_mesa_banho",
				NameLength: 40, DescriptionLength: 300, PhotosQty: 2,
				WeightG: 800, LengthCm: 30, HeightCm: 10, WidthCm: 20,
			},
			{
				ProductID: "p2", CategoryName: "esporte_lazer",
				NameLength: 25, DescriptionLength: 150, PhotosQty: 1,
				WeightG: math.NaN(), LengthCm: 15, HeightCm: 5, WidthCm: 10,
			},
		},
		Sellers: []dataset.Seller{
			{SellerID: "s1", ZipPrefix: "01000", City: "sao paulo", State: "SP"},
			{SellerID: "s2", ZipPrefix: "90000", City: "porto alegre", State: "RS"},
		},
		Geolocation: []dataset.Geolocation{
			{ZipPrefix: "01000", Lat: -23.55, Lng: -46.63},
			{ZipPrefix: "01000", Lat: -23.56, Lng: -46.64}, // duplicate prefix, first row wins
			{ZipPrefix: "20000", Lat: -22.90, Lng: -43.20},
			{ZipPrefix: "90000", Lat: -30.03, Lng: -51.23},
		},
		CategoryTranslations: []dataset.CategoryTranslation{
			{CategoryName: "cama_mesa_banho", English: "bed_bath_table"},
			{CategoryName: "esporte_lazer", English: "sports_leisure"},
		},
	}
}

func TestOrderFeatures_WaitTime(t *testing.T) {
	engine := NewOrderFeatures(featureTestDataset(t), slog.Default())

	rows := engine.WaitTime(context.Background(), true)
	require.Len(t, rows, 2)

	o1 := rows[0]
	assert.Equal(t, "o1", o1.OrderID)
	assert.InDelta(t, 5.0, o1.WaitTime, 1e-9)
	assert.InDelta(t, 7.0, o1.ExpectedWaitTime, 1e-9)
	assert.Equal(t, 0.0, o1.DelayVsExpected) // early delivery clamps to zero
	assert.Equal(t, "delivered", o1.OrderStatus)

	o2 := rows[1]
	assert.InDelta(t, 10.0, o2.WaitTime, 1e-9)
	assert.InDelta(t, 7.0, o2.ExpectedWaitTime, 1e-9)
	assert.InDelta(t, 3.0, o2.DelayVsExpected, 1e-9)
}

func TestOrderFeatures_WaitTime_AllOrders(t *testing.T) {
	engine := NewOrderFeatures(featureTestDataset(t), slog.Default())

	rows := engine.WaitTime(context.Background(), false)
	require.Len(t, rows, 3)
	assert.NotEqual(t, len(engine.WaitTime(context.Background(), true)), len(rows))

	o3 := rows[2]
	assert.Equal(t, "o3", o3.OrderID)
	assert.True(t, math.IsNaN(o3.WaitTime))
	assert.True(t, math.IsNaN(o3.DelayVsExpected))
	assert.InDelta(t, 9.0, o3.ExpectedWaitTime, 1e-9)
}

func TestOrderFeatures_ReviewScore(t *testing.T) {
	engine := NewOrderFeatures(featureTestDataset(t), slog.Default())

	rows := engine.ReviewScore(context.Background())
	require.Len(t, rows, 2) // duplicate review on o1 keeps the first

	assert.Equal(t, OrderReview{OrderID: "o1", DimIsFiveStar: 1, DimIsOneStar: 0, ReviewScore: 5}, rows[0])
	assert.Equal(t, OrderReview{OrderID: "o2", DimIsFiveStar: 0, DimIsOneStar: 1, ReviewScore: 1}, rows[1])
}

func TestOrderFeatures_NumberOfProductsAndSellers(t *testing.T) {
	engine := NewOrderFeatures(featureTestDataset(t), slog.Default())
	ctx := context.Background()

	products := engine.NumberOfProducts(ctx)
	require.Len(t, products, 3)
	// two units of the same product both count
	assert.Equal(t, OrderProductCount{OrderID: "o1", NumberOfProducts: 2}, products[0])
	assert.Equal(t, OrderProductCount{OrderID: "o2", NumberOfProducts: 2}, products[1])

	sellers := engine.NumberOfSellers(ctx)
	require.Len(t, sellers, 3)
	assert.Equal(t, OrderSellerCount{OrderID: "o1", NumberOfSellers: 1}, sellers[0])
	assert.Equal(t, OrderSellerCount{OrderID: "o2", NumberOfSellers: 2}, sellers[1])
}

func TestOrderFeatures_PriceAndFreight(t *testing.T) {
	engine := NewOrderFeatures(featureTestDataset(t), slog.Default())

	rows := engine.PriceAndFreight(context.Background())
	require.Len(t, rows, 3)
	assert.Equal(t, OrderCharges{OrderID: "o1", Price: 200, FreightValue: 20}, rows[0])
	assert.Equal(t, OrderCharges{OrderID: "o2", Price: 500, FreightValue: 50}, rows[1])
}

func TestOrderFeatures_DistanceSellerCustomer(t *testing.T) {
	engine := NewOrderFeatures(featureTestDataset(t), slog.Default())

	rows := engine.DistanceSellerCustomer(context.Background())
	require.Len(t, rows, 3)

	// o1: seller and customer share the same postal prefix
	assert.Equal(t, "o1", rows[0].OrderID)
	assert.InDelta(t, 0.0, rows[0].DistanceSellerCustomer, 1e-9)

	// o2 averages one pair per line item
	wantO2 := (Haversine(-30.03, -51.23, -22.90, -43.20) + Haversine(-23.55, -46.63, -22.90, -43.20)) / 2
	assert.Equal(t, "o2", rows[1].OrderID)
	assert.InDelta(t, wantO2, rows[1].DistanceSellerCustomer, 1e-9)
}

func TestHaversine(t *testing.T) {
	// Sao Paulo to Rio de Janeiro, roughly 360 km
	d := Haversine(-23.55, -46.63, -22.90, -43.20)
	assert.InDelta(t, 360, d, 15)

	assert.Equal(t, 0.0, Haversine(-23.55, -46.63, -23.55, -46.63))
}

func TestOrderFeatures_TrainingData(t *testing.T) {
	engine := NewOrderFeatures(featureTestDataset(t), slog.Default())

	rows := engine.TrainingData(context.Background(), DefaultTrainingOptions())
	require.Len(t, rows, 2)

	o1 := rows[0]
	assert.Equal(t, "o1", o1.OrderID)
	assert.InDelta(t, 5.0, o1.WaitTime, 1e-9)
	assert.Equal(t, 1, o1.DimIsFiveStar)
	assert.Equal(t, 2, o1.NumberOfProducts)
	assert.Equal(t, 1, o1.NumberOfSellers)
	assert.Equal(t, 200.0, o1.Price)
	assert.True(t, math.IsNaN(o1.DistanceSellerCustomer)) // distance disabled

	o2 := rows[1]
	assert.Equal(t, 1, o2.DimIsOneStar)
	assert.Equal(t, 2, o2.NumberOfSellers)
}

func TestOrderFeatures_TrainingData_WithDistance(t *testing.T) {
	engine := NewOrderFeatures(featureTestDataset(t), slog.Default())

	rows := engine.TrainingData(context.Background(), TrainingOptions{IsDelivered: true, WithDistance: true})
	require.Len(t, rows, 2)
	assert.InDelta(t, 0.0, rows[0].DistanceSellerCustomer, 1e-9)
	assert.False(t, math.IsNaN(rows[1].DistanceSellerCustomer))
}

func TestOrderFeatures_TrainingData_MembershipRoundTrip(t *testing.T) {
	engine := NewOrderFeatures(featureTestDataset(t), slog.Default())
	ctx := context.Background()

	reviews := indexBy(engine.ReviewScore(ctx), func(r OrderReview) string { return r.OrderID })
	products := indexBy(engine.NumberOfProducts(ctx), func(r OrderProductCount) string { return r.OrderID })
	sellers := indexBy(engine.NumberOfSellers(ctx), func(r OrderSellerCount) string { return r.OrderID })
	charges := indexBy(engine.PriceAndFreight(ctx), func(r OrderCharges) string { return r.OrderID })

	for _, row := range engine.TrainingData(ctx, DefaultTrainingOptions()) {
		assert.Contains(t, reviews, row.OrderID)
		assert.Contains(t, products, row.OrderID)
		assert.Contains(t, sellers, row.OrderID)
		assert.Contains(t, charges, row.OrderID)
	}
}

func TestOrderFeatures_TrainingData_AllOrdersDropsNaN(t *testing.T) {
	engine := NewOrderFeatures(featureTestDataset(t), slog.Default())

	// o3 is undelivered: its NaN wait time drops the row even without
	// the delivered filter, and it has no review anyway
	rows := engine.TrainingData(context.Background(), TrainingOptions{IsDelivered: false})
	require.Len(t, rows, 2)
	assert.Equal(t, "o1", rows[0].OrderID)
	assert.Equal(t, "o2", rows[1].OrderID)
}
