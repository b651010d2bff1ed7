package exporter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olistfeatures/internal/features"
)

func TestOrderTrainingRecords(t *testing.T) {
	rows := []features.OrderTrainingRow{
		{
			OrderID: "o1", WaitTime: 5, ExpectedWaitTime: 7.5, DelayVsExpected: 0,
			OrderStatus: "delivered", DimIsFiveStar: 1, ReviewScore: 5,
			NumberOfProducts: 2, NumberOfSellers: 1, Price: 200, FreightValue: 20.5,
			DistanceSellerCustomer: math.NaN(),
		},
	}

	headers, records := OrderTrainingRecords(rows, false)
	assert.Equal(t, "order_id", headers[0])
	assert.NotContains(t, headers, "distance_seller_customer")
	require.Len(t, records, 1)
	assert.Equal(t, []string{"o1", "5", "7.5", "0", "delivered", "1", "0", "5", "2", "1", "200", "20.5"}, records[0])
}

func TestOrderTrainingRecords_WithDistance(t *testing.T) {
	rows := []features.OrderTrainingRow{
		{OrderID: "o1", OrderStatus: "delivered", DistanceSellerCustomer: 12.25},
	}

	headers, records := OrderTrainingRecords(rows, true)
	assert.Equal(t, "distance_seller_customer", headers[len(headers)-1])
	assert.Equal(t, "12.25", records[0][len(records[0])-1])
}

func TestProductTrainingRecords_NaNBecomesEmpty(t *testing.T) {
	rows := []features.ProductTrainingRow{
		{ProductID: "p1", Category: "bed_bath_table", WeightG: math.NaN(), Sales: 400},
	}

	headers, records := ProductTrainingRecords(rows)
	require.Len(t, records, 1)
	require.Len(t, records[0], len(headers))

	weightIdx := indexOf(t, headers, "product_weight_g")
	assert.Equal(t, "", records[0][weightIdx])
	salesIdx := indexOf(t, headers, "sales")
	assert.Equal(t, "400", records[0][salesIdx])
}

func TestSellerTrainingRecords(t *testing.T) {
	first := time.Date(2018, 1, 1, 11, 0, 0, 0, time.UTC)
	last := time.Date(2018, 4, 2, 8, 0, 0, 0, time.UTC)
	rows := []features.SellerTrainingRow{
		{
			SellerID: "s1", City: "curitiba", State: "PR",
			DateFirstSale: first, DateLastSale: last, MonthsOnOlist: 3,
			Sales: 1000, Revenues: 340, Profits: 190,
		},
	}

	headers, records := SellerTrainingRecords(rows)
	require.Len(t, records, 1)
	require.Len(t, records[0], len(headers))

	assert.Equal(t, "2018-01-01 11:00:00", records[0][indexOf(t, headers, "date_first_sale")])
	assert.Equal(t, "3", records[0][indexOf(t, headers, "months_on_olist")])
	assert.Equal(t, "190", records[0][indexOf(t, headers, "profits")])
}

func TestCategoryRecords(t *testing.T) {
	rows := []features.CategoryRow{
		{Category: "bed_bath_table", NOrders: 2.5, Quantity: 7, Sales: 400},
	}

	headers, records := CategoryRecords(rows)
	require.Len(t, records, 1)
	assert.Equal(t, "bed_bath_table", records[0][0])
	assert.Equal(t, "2.5", records[0][indexOf(t, headers, "n_orders")])
	assert.Equal(t, "7", records[0][indexOf(t, headers, "quantity")])
}

func TestFeatureExporter_WritesAllTables(t *testing.T) {
	dir := t.TempDir()
	exporter := NewFeatureExporter(dir)

	require.NoError(t, exporter.ExportOrderTraining([]features.OrderTrainingRow{{OrderID: "o1"}}, false))
	require.NoError(t, exporter.ExportProductTraining([]features.ProductTrainingRow{{ProductID: "p1"}}))
	require.NoError(t, exporter.ExportSellerTraining([]features.SellerTrainingRow{{SellerID: "s1"}}))
	require.NoError(t, exporter.ExportCategories([]features.CategoryRow{{Category: "toys"}}))

	for _, name := range []string{OrdersTrainingFile, ProductsTrainingFile, SellersTrainingFile, CategoriesFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.True(t, strings.Count(string(data), "\n") >= 2, "%s should have header and one row", name)
	}
}

func indexOf(t *testing.T, headers []string, name string) int {
	t.Helper()
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	t.Fatalf("header %q not found", name)
	return -1
}
