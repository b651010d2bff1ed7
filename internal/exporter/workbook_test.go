package exporter

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"olistfeatures/internal/features"
)

func TestWorkbookWriter_Write(t *testing.T) {
	dir := t.TempDir()
	writer := NewWorkbookWriter(dir)

	orders := []features.OrderTrainingRow{
		{OrderID: "o1", WaitTime: 5, OrderStatus: "delivered", ReviewScore: 5, Price: 200},
	}
	products := []features.ProductTrainingRow{
		{ProductID: "p1", Category: "bed_bath_table", WeightG: math.NaN(), Sales: 400},
	}
	sellers := []features.SellerTrainingRow{
		{SellerID: "s1", City: "curitiba", State: "PR", Sales: 1000},
	}

	require.NoError(t, writer.Write(orders, products, sellers, false))

	f, err := excelize.OpenFile(filepath.Join(dir, WorkbookFile))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Orders", "Products", "Sellers"}, f.GetSheetList())

	orderID, err := f.GetCellValue("Orders", "A2")
	require.NoError(t, err)
	assert.Equal(t, "o1", orderID)

	// NaN weight renders as an empty cell
	weight, err := f.GetCellValue("Products", "F2")
	require.NoError(t, err)
	assert.Equal(t, "", weight)

	city, err := f.GetCellValue("Sellers", "B2")
	require.NoError(t, err)
	assert.Equal(t, "curitiba", city)
}
