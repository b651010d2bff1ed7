package exporter

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"olistfeatures/internal/features"
)

// WorkbookFile is the output file name of the combined XLSX workbook
const WorkbookFile = "feature_tables.xlsx"

// Sheet names of the combined workbook
const (
	sheetOrders   = "Orders"
	sheetProducts = "Products"
	sheetSellers  = "Sellers"
)

// WorkbookWriter renders the three training tables as one XLSX workbook
type WorkbookWriter struct {
	outputDir string
}

// NewWorkbookWriter creates a workbook writer writing into outputDir
func NewWorkbookWriter(outputDir string) *WorkbookWriter {
	return &WorkbookWriter{outputDir: outputDir}
}

// Write builds the workbook with one sheet per entity table
func (w *WorkbookWriter) Write(orders []features.OrderTrainingRow, products []features.ProductTrainingRow, sellers []features.SellerTrainingRow, withDistance bool) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetOrders)
	if err := writeOrderSheet(f, orders, withDistance); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetProducts); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetProducts, err)
	}
	if err := writeProductSheet(f, products); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetSellers); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetSellers, err)
	}
	if err := writeSellerSheet(f, sellers); err != nil {
		return err
	}

	path := filepath.Join(w.outputDir, WorkbookFile)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeOrderSheet(f *excelize.File, rows []features.OrderTrainingRow, withDistance bool) error {
	headers := []any{
		"order_id", "wait_time", "expected_wait_time", "delay_vs_expected",
		"order_status", "dim_is_five_star", "dim_is_one_star", "review_score",
		"number_of_products", "number_of_sellers", "price", "freight_value",
	}
	if withDistance {
		headers = append(headers, "distance_seller_customer")
	}
	if err := f.SetSheetRow(sheetOrders, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write order headers: %w", err)
	}
	for i, r := range rows {
		cells := []any{
			r.OrderID, cellFloat(r.WaitTime), cellFloat(r.ExpectedWaitTime),
			cellFloat(r.DelayVsExpected), r.OrderStatus, r.DimIsFiveStar,
			r.DimIsOneStar, r.ReviewScore, r.NumberOfProducts,
			r.NumberOfSellers, cellFloat(r.Price), cellFloat(r.FreightValue),
		}
		if withDistance {
			cells = append(cells, cellFloat(r.DistanceSellerCustomer))
		}
		if err := f.SetSheetRow(sheetOrders, cellRef(i), &cells); err != nil {
			return fmt.Errorf("failed to write order row %d: %w", i, err)
		}
	}
	return nil
}

func writeProductSheet(f *excelize.File, rows []features.ProductTrainingRow) error {
	headers := []any{
		"product_id", "category", "product_name_length",
		"product_description_length", "product_photos_qty",
		"product_weight_g", "product_length_cm", "product_height_cm",
		"product_width_cm", "wait_time", "price", "share_of_one_stars",
		"share_of_five_stars", "review_score", "cost_of_reviews",
		"n_orders", "quantity", "sales", "revenues", "profits",
	}
	if err := f.SetSheetRow(sheetProducts, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write product headers: %w", err)
	}
	for i, r := range rows {
		cells := []any{
			r.ProductID, r.Category, cellFloat(r.NameLength),
			cellFloat(r.DescriptionLength), cellFloat(r.PhotosQty),
			cellFloat(r.WeightG), cellFloat(r.LengthCm), cellFloat(r.HeightCm),
			cellFloat(r.WidthCm), cellFloat(r.WaitTime), cellFloat(r.Price),
			cellFloat(r.ShareOfOneStars), cellFloat(r.ShareOfFiveStars),
			cellFloat(r.ReviewScore), cellFloat(r.CostOfReviews),
			r.NOrders, r.Quantity, cellFloat(r.Sales),
			cellFloat(r.Revenues), cellFloat(r.Profits),
		}
		if err := f.SetSheetRow(sheetProducts, cellRef(i), &cells); err != nil {
			return fmt.Errorf("failed to write product row %d: %w", i, err)
		}
	}
	return nil
}

func writeSellerSheet(f *excelize.File, rows []features.SellerTrainingRow) error {
	headers := []any{
		"seller_id", "seller_city", "seller_state", "delay_to_carrier",
		"wait_time", "date_first_sale", "date_last_sale", "months_on_olist",
		"share_of_one_stars", "share_of_five_stars", "review_score",
		"cost_of_reviews", "n_orders", "quantity", "quantity_per_order",
		"sales", "revenues", "profits",
	}
	if err := f.SetSheetRow(sheetSellers, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write seller headers: %w", err)
	}
	for i, r := range rows {
		cells := []any{
			r.SellerID, r.City, r.State, cellFloat(r.DelayToCarrier),
			cellFloat(r.WaitTime), cellTime(r.DateFirstSale),
			cellTime(r.DateLastSale), cellFloat(r.MonthsOnOlist),
			cellFloat(r.ShareOfOneStars), cellFloat(r.ShareOfFiveStars),
			cellFloat(r.ReviewScore), cellFloat(r.CostOfReviews),
			r.NOrders, r.Quantity, cellFloat(r.QuantityPerOrder),
			cellFloat(r.Sales), cellFloat(r.Revenues), cellFloat(r.Profits),
		}
		if err := f.SetSheetRow(sheetSellers, cellRef(i), &cells); err != nil {
			return fmt.Errorf("failed to write seller row %d: %w", i, err)
		}
	}
	return nil
}

// cellRef returns the A-column cell of the i-th data row (row 1 holds
// the headers)
func cellRef(i int) string {
	return fmt.Sprintf("A%d", i+2)
}

// cellFloat maps NaN to an empty cell
func cellFloat(f float64) any {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

// cellTime renders timestamps as text in the dataset layout
func cellTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}
