package exporter

import (
	"fmt"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"olistfeatures/internal/features"
)

// Parquet output file names
const (
	OrdersParquetFile   = "orders_training_data.parquet"
	ProductsParquetFile = "products_training_data.parquet"
	SellersParquetFile  = "sellers_training_data.parquet"
)

// orderParquetRow mirrors OrderTrainingRow with Parquet schema tags
type orderParquetRow struct {
	OrderID                string  `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	WaitTime               float64 `parquet:"name=wait_time, type=DOUBLE"`
	ExpectedWaitTime       float64 `parquet:"name=expected_wait_time, type=DOUBLE"`
	DelayVsExpected        float64 `parquet:"name=delay_vs_expected, type=DOUBLE"`
	OrderStatus            string  `parquet:"name=order_status, type=BYTE_ARRAY, convertedtype=UTF8"`
	DimIsFiveStar          int32   `parquet:"name=dim_is_five_star, type=INT32"`
	DimIsOneStar           int32   `parquet:"name=dim_is_one_star, type=INT32"`
	ReviewScore            int32   `parquet:"name=review_score, type=INT32"`
	NumberOfProducts       int32   `parquet:"name=number_of_products, type=INT32"`
	NumberOfSellers        int32   `parquet:"name=number_of_sellers, type=INT32"`
	Price                  float64 `parquet:"name=price, type=DOUBLE"`
	FreightValue           float64 `parquet:"name=freight_value, type=DOUBLE"`
	DistanceSellerCustomer float64 `parquet:"name=distance_seller_customer, type=DOUBLE"`
}

// productParquetRow mirrors ProductTrainingRow with Parquet schema tags
type productParquetRow struct {
	ProductID         string  `parquet:"name=product_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category          string  `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8"`
	NameLength        float64 `parquet:"name=product_name_length, type=DOUBLE"`
	DescriptionLength float64 `parquet:"name=product_description_length, type=DOUBLE"`
	PhotosQty         float64 `parquet:"name=product_photos_qty, type=DOUBLE"`
	WeightG           float64 `parquet:"name=product_weight_g, type=DOUBLE"`
	LengthCm          float64 `parquet:"name=product_length_cm, type=DOUBLE"`
	HeightCm          float64 `parquet:"name=product_height_cm, type=DOUBLE"`
	WidthCm           float64 `parquet:"name=product_width_cm, type=DOUBLE"`
	WaitTime          float64 `parquet:"name=wait_time, type=DOUBLE"`
	Price             float64 `parquet:"name=price, type=DOUBLE"`
	ShareOfOneStars   float64 `parquet:"name=share_of_one_stars, type=DOUBLE"`
	ShareOfFiveStars  float64 `parquet:"name=share_of_five_stars, type=DOUBLE"`
	ReviewScore       float64 `parquet:"name=review_score, type=DOUBLE"`
	CostOfReviews     float64 `parquet:"name=cost_of_reviews, type=DOUBLE"`
	NOrders           int32   `parquet:"name=n_orders, type=INT32"`
	Quantity          int32   `parquet:"name=quantity, type=INT32"`
	Sales             float64 `parquet:"name=sales, type=DOUBLE"`
	Revenues          float64 `parquet:"name=revenues, type=DOUBLE"`
	Profits           float64 `parquet:"name=profits, type=DOUBLE"`
}

// sellerParquetRow mirrors SellerTrainingRow with Parquet schema tags
type sellerParquetRow struct {
	SellerID         string  `parquet:"name=seller_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	City             string  `parquet:"name=seller_city, type=BYTE_ARRAY, convertedtype=UTF8"`
	State            string  `parquet:"name=seller_state, type=BYTE_ARRAY, convertedtype=UTF8"`
	DelayToCarrier   float64 `parquet:"name=delay_to_carrier, type=DOUBLE"`
	WaitTime         float64 `parquet:"name=wait_time, type=DOUBLE"`
	DateFirstSale    string  `parquet:"name=date_first_sale, type=BYTE_ARRAY, convertedtype=UTF8"`
	DateLastSale     string  `parquet:"name=date_last_sale, type=BYTE_ARRAY, convertedtype=UTF8"`
	MonthsOnOlist    float64 `parquet:"name=months_on_olist, type=DOUBLE"`
	ShareOfOneStars  float64 `parquet:"name=share_of_one_stars, type=DOUBLE"`
	ShareOfFiveStars float64 `parquet:"name=share_of_five_stars, type=DOUBLE"`
	ReviewScore      float64 `parquet:"name=review_score, type=DOUBLE"`
	CostOfReviews    float64 `parquet:"name=cost_of_reviews, type=DOUBLE"`
	NOrders          int32   `parquet:"name=n_orders, type=INT32"`
	Quantity         int32   `parquet:"name=quantity, type=INT32"`
	QuantityPerOrder float64 `parquet:"name=quantity_per_order, type=DOUBLE"`
	Sales            float64 `parquet:"name=sales, type=DOUBLE"`
	Revenues         float64 `parquet:"name=revenues, type=DOUBLE"`
	Profits          float64 `parquet:"name=profits, type=DOUBLE"`
}

// ParquetWriter renders the training tables as Snappy-compressed
// Parquet files
type ParquetWriter struct {
	outputDir string
}

// NewParquetWriter creates a Parquet writer writing into outputDir
func NewParquetWriter(outputDir string) *ParquetWriter {
	return &ParquetWriter{outputDir: outputDir}
}

// WriteOrders writes the order training table
func (w *ParquetWriter) WriteOrders(rows []features.OrderTrainingRow) error {
	converted := make([]orderParquetRow, 0, len(rows))
	for _, r := range rows {
		converted = append(converted, orderParquetRow{
			OrderID:                r.OrderID,
			WaitTime:               r.WaitTime,
			ExpectedWaitTime:       r.ExpectedWaitTime,
			DelayVsExpected:        r.DelayVsExpected,
			OrderStatus:            r.OrderStatus,
			DimIsFiveStar:          int32(r.DimIsFiveStar),
			DimIsOneStar:           int32(r.DimIsOneStar),
			ReviewScore:            int32(r.ReviewScore),
			NumberOfProducts:       int32(r.NumberOfProducts),
			NumberOfSellers:        int32(r.NumberOfSellers),
			Price:                  r.Price,
			FreightValue:           r.FreightValue,
			DistanceSellerCustomer: r.DistanceSellerCustomer,
		})
	}
	return writeParquet(filepath.Join(w.outputDir, OrdersParquetFile), new(orderParquetRow), converted)
}

// WriteProducts writes the product training table
func (w *ParquetWriter) WriteProducts(rows []features.ProductTrainingRow) error {
	converted := make([]productParquetRow, 0, len(rows))
	for _, r := range rows {
		converted = append(converted, productParquetRow{
			ProductID:         r.ProductID,
			Category:          r.Category,
			NameLength:        r.NameLength,
			DescriptionLength: r.DescriptionLength,
			PhotosQty:         r.PhotosQty,
			WeightG:           r.WeightG,
			LengthCm:          r.LengthCm,
			HeightCm:          r.HeightCm,
			WidthCm:           r.WidthCm,
			WaitTime:          r.WaitTime,
			Price:             r.Price,
			ShareOfOneStars:   r.ShareOfOneStars,
			ShareOfFiveStars:  r.ShareOfFiveStars,
			ReviewScore:       r.ReviewScore,
			CostOfReviews:     r.CostOfReviews,
			NOrders:           int32(r.NOrders),
			Quantity:          int32(r.Quantity),
			Sales:             r.Sales,
			Revenues:          r.Revenues,
			Profits:           r.Profits,
		})
	}
	return writeParquet(filepath.Join(w.outputDir, ProductsParquetFile), new(productParquetRow), converted)
}

// WriteSellers writes the seller training table
func (w *ParquetWriter) WriteSellers(rows []features.SellerTrainingRow) error {
	converted := make([]sellerParquetRow, 0, len(rows))
	for _, r := range rows {
		converted = append(converted, sellerParquetRow{
			SellerID:         r.SellerID,
			City:             r.City,
			State:            r.State,
			DelayToCarrier:   r.DelayToCarrier,
			WaitTime:         r.WaitTime,
			DateFirstSale:    r.DateFirstSale.Format(dateLayout),
			DateLastSale:     r.DateLastSale.Format(dateLayout),
			MonthsOnOlist:    r.MonthsOnOlist,
			ShareOfOneStars:  r.ShareOfOneStars,
			ShareOfFiveStars: r.ShareOfFiveStars,
			ReviewScore:      r.ReviewScore,
			CostOfReviews:    r.CostOfReviews,
			NOrders:          int32(r.NOrders),
			Quantity:         int32(r.Quantity),
			QuantityPerOrder: r.QuantityPerOrder,
			Sales:            r.Sales,
			Revenues:         r.Revenues,
			Profits:          r.Profits,
		})
	}
	return writeParquet(filepath.Join(w.outputDir, SellersParquetFile), new(sellerParquetRow), converted)
}

// writeParquet writes rows of one schema to a local Parquet file
func writeParquet[T any](path string, schema *T, rows []T) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, schema, 2)
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			fw.Close()
			return fmt.Errorf("failed to write parquet row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return fw.Close()
}
