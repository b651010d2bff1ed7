package exporter

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"olistfeatures/internal/features"
)

// Canonical output file names for the feature tables
const (
	OrdersTrainingFile   = "orders_training_data.csv"
	ProductsTrainingFile = "products_training_data.csv"
	SellersTrainingFile  = "sellers_training_data.csv"
	CategoriesFile       = "product_categories.csv"
)

const dateLayout = "2006-01-02 15:04:05"

// FeatureExporter renders feature tables as CSV files
type FeatureExporter struct {
	csvWriter *CSVWriter
}

// NewFeatureExporter creates a feature table exporter writing into outputDir
func NewFeatureExporter(outputDir string) *FeatureExporter {
	return &FeatureExporter{
		csvWriter: NewCSVWriter(outputDir),
	}
}

// ExportOrderTraining writes the order training table
func (e *FeatureExporter) ExportOrderTraining(rows []features.OrderTrainingRow, withDistance bool) error {
	headers, records := OrderTrainingRecords(rows, withDistance)
	if err := e.csvWriter.WriteSimpleCSV(OrdersTrainingFile, headers, records); err != nil {
		return fmt.Errorf("failed to write order training table: %w", err)
	}
	return nil
}

// ExportProductTraining writes the product training table
func (e *FeatureExporter) ExportProductTraining(rows []features.ProductTrainingRow) error {
	headers, records := ProductTrainingRecords(rows)
	if err := e.csvWriter.WriteSimpleCSV(ProductsTrainingFile, headers, records); err != nil {
		return fmt.Errorf("failed to write product training table: %w", err)
	}
	return nil
}

// ExportSellerTraining writes the seller training table
func (e *FeatureExporter) ExportSellerTraining(rows []features.SellerTrainingRow) error {
	headers, records := SellerTrainingRecords(rows)
	if err := e.csvWriter.WriteSimpleCSV(SellersTrainingFile, headers, records); err != nil {
		return fmt.Errorf("failed to write seller training table: %w", err)
	}
	return nil
}

// ExportCategories writes the per-category rollup table
func (e *FeatureExporter) ExportCategories(rows []features.CategoryRow) error {
	headers, records := CategoryRecords(rows)
	if err := e.csvWriter.WriteSimpleCSV(CategoriesFile, headers, records); err != nil {
		return fmt.Errorf("failed to write category table: %w", err)
	}
	return nil
}

// OrderTrainingRecords converts order training rows to CSV headers and
// records. The distance column is only present when the table was built
// with distances enabled.
func OrderTrainingRecords(rows []features.OrderTrainingRow, withDistance bool) ([]string, [][]string) {
	headers := []string{
		"order_id", "wait_time", "expected_wait_time", "delay_vs_expected",
		"order_status", "dim_is_five_star", "dim_is_one_star", "review_score",
		"number_of_products", "number_of_sellers", "price", "freight_value",
	}
	if withDistance {
		headers = append(headers, "distance_seller_customer")
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		record := []string{
			r.OrderID,
			formatFloat(r.WaitTime),
			formatFloat(r.ExpectedWaitTime),
			formatFloat(r.DelayVsExpected),
			r.OrderStatus,
			formatInt(r.DimIsFiveStar),
			formatInt(r.DimIsOneStar),
			formatInt(r.ReviewScore),
			formatInt(r.NumberOfProducts),
			formatInt(r.NumberOfSellers),
			formatFloat(r.Price),
			formatFloat(r.FreightValue),
		}
		if withDistance {
			record = append(record, formatFloat(r.DistanceSellerCustomer))
		}
		records = append(records, record)
	}
	return headers, records
}

// ProductTrainingRecords converts product training rows to CSV headers
// and records
func ProductTrainingRecords(rows []features.ProductTrainingRow) ([]string, [][]string) {
	headers := []string{
		"product_id", "category", "product_name_length",
		"product_description_length", "product_photos_qty",
		"product_weight_g", "product_length_cm", "product_height_cm",
		"product_width_cm", "wait_time", "price", "share_of_one_stars",
		"share_of_five_stars", "review_score", "cost_of_reviews",
		"n_orders", "quantity", "sales", "revenues", "profits",
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.ProductID,
			r.Category,
			formatFloat(r.NameLength),
			formatFloat(r.DescriptionLength),
			formatFloat(r.PhotosQty),
			formatFloat(r.WeightG),
			formatFloat(r.LengthCm),
			formatFloat(r.HeightCm),
			formatFloat(r.WidthCm),
			formatFloat(r.WaitTime),
			formatFloat(r.Price),
			formatFloat(r.ShareOfOneStars),
			formatFloat(r.ShareOfFiveStars),
			formatFloat(r.ReviewScore),
			formatFloat(r.CostOfReviews),
			formatInt(r.NOrders),
			formatInt(r.Quantity),
			formatFloat(r.Sales),
			formatFloat(r.Revenues),
			formatFloat(r.Profits),
		})
	}
	return headers, records
}

// SellerTrainingRecords converts seller training rows to CSV headers
// and records
func SellerTrainingRecords(rows []features.SellerTrainingRow) ([]string, [][]string) {
	headers := []string{
		"seller_id", "seller_city", "seller_state", "delay_to_carrier",
		"wait_time", "date_first_sale", "date_last_sale", "months_on_olist",
		"share_of_one_stars", "share_of_five_stars", "review_score",
		"cost_of_reviews", "n_orders", "quantity", "quantity_per_order",
		"sales", "revenues", "profits",
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.SellerID,
			r.City,
			r.State,
			formatFloat(r.DelayToCarrier),
			formatFloat(r.WaitTime),
			formatTime(r.DateFirstSale),
			formatTime(r.DateLastSale),
			formatFloat(r.MonthsOnOlist),
			formatFloat(r.ShareOfOneStars),
			formatFloat(r.ShareOfFiveStars),
			formatFloat(r.ReviewScore),
			formatFloat(r.CostOfReviews),
			formatInt(r.NOrders),
			formatInt(r.Quantity),
			formatFloat(r.QuantityPerOrder),
			formatFloat(r.Sales),
			formatFloat(r.Revenues),
			formatFloat(r.Profits),
		})
	}
	return headers, records
}

// CategoryRecords converts category rollup rows to CSV headers and records
func CategoryRecords(rows []features.CategoryRow) ([]string, [][]string) {
	headers := []string{
		"category", "product_name_length", "product_description_length",
		"product_photos_qty", "product_weight_g", "product_length_cm",
		"product_height_cm", "product_width_cm", "wait_time", "price",
		"share_of_one_stars", "share_of_five_stars", "review_score",
		"cost_of_reviews", "n_orders", "quantity", "sales", "revenues",
		"profits",
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Category,
			formatFloat(r.NameLength),
			formatFloat(r.DescriptionLength),
			formatFloat(r.PhotosQty),
			formatFloat(r.WeightG),
			formatFloat(r.LengthCm),
			formatFloat(r.HeightCm),
			formatFloat(r.WidthCm),
			formatFloat(r.WaitTime),
			formatFloat(r.Price),
			formatFloat(r.ShareOfOneStars),
			formatFloat(r.ShareOfFiveStars),
			formatFloat(r.ReviewScore),
			formatFloat(r.CostOfReviews),
			formatFloat(r.NOrders),
			formatInt(r.Quantity),
			formatFloat(r.Sales),
			formatFloat(r.Revenues),
			formatFloat(r.Profits),
		})
	}
	return headers, records
}

// formatFloat renders a float with minimal digits. NaN becomes an
// empty field, matching how missing values are represented on load.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt renders an int for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatTime renders a timestamp in the source dataset's layout
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
