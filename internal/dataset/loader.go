package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	apperrors "olistfeatures/internal/errors"
)

// timestampLayout is the format of every timestamp column in the dataset
const timestampLayout = "2006-01-02 15:04:05"

// Load reads all source tables from dir into a Dataset. A missing file
// or a table with zero rows is fatal: the engines never compute partial
// features on top of an incomplete snapshot.
func Load(ctx context.Context, dir string, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	ds := &Dataset{}

	for _, name := range AllTables {
		path := filepath.Join(dir, name.FileName())
		if _, err := os.Stat(path); err != nil {
			return nil, apperrors.NewMissingDataError(
				fmt.Sprintf("source table %q not found", name), err).
				WithContext("path", path)
		}

		if err := loadTable(ds, name, path); err != nil {
			return nil, err
		}

		if ds.RowCount(name) == 0 {
			return nil, apperrors.NewMissingDataError(
				fmt.Sprintf("source table %q is empty", name), nil).
				WithContext("path", path)
		}

		logger.DebugContext(ctx, "loaded source table",
			"table", string(name),
			"rows", ds.RowCount(name),
		)
	}

	logger.InfoContext(ctx, "dataset loaded",
		"dir", dir,
		"orders", len(ds.Orders),
		"order_items", len(ds.OrderItems),
		"reviews", len(ds.OrderReviews),
		"products", len(ds.Products),
		"sellers", len(ds.Sellers),
		"customers", len(ds.Customers),
		"geolocation_rows", len(ds.Geolocation),
		"duration", time.Since(start),
	)

	return ds, nil
}

// loadTable dispatches to the per-table parser
func loadTable(ds *Dataset, name TableName, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("open table %q", name), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return apperrors.NewParsingError(fmt.Sprintf("read header of table %q", name), err)
	}
	cols := indexColumns(header)

	var parseErr error
	switch name {
	case TableCustomers:
		ds.Customers, parseErr = parseCustomers(reader, cols)
	case TableOrders:
		ds.Orders, parseErr = parseOrders(reader, cols)
	case TableOrderItems:
		ds.OrderItems, parseErr = parseOrderItems(reader, cols)
	case TableOrderReviews:
		ds.OrderReviews, parseErr = parseReviews(reader, cols)
	case TableProducts:
		ds.Products, parseErr = parseProducts(reader, cols)
	case TableSellers:
		ds.Sellers, parseErr = parseSellers(reader, cols)
	case TableGeolocation:
		ds.Geolocation, parseErr = parseGeolocation(reader, cols)
	case TableCategoryTranslation:
		ds.CategoryTranslations, parseErr = parseCategoryTranslations(reader, cols)
	}

	if parseErr != nil {
		return apperrors.NewParsingError(fmt.Sprintf("parse table %q", name), parseErr)
	}
	return nil
}

// columnIndex resolves column positions by header name
type columnIndex map[string]int

func indexColumns(header []string) columnIndex {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return cols
}

// field returns the named column of record, or "" when absent
func (c columnIndex) field(record []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// requireColumns verifies the header carries every named column
func (c columnIndex) requireColumns(names ...string) error {
	for _, name := range names {
		if _, ok := c[name]; !ok {
			return fmt.Errorf("missing column %q", name)
		}
	}
	return nil
}

// readRows drains the CSV reader, applying fn to each record.
// Records that fn rejects (returns false) are skipped rather than
// failing the load: the raw dataset carries a handful of malformed
// rows and the join semantics downstream drop incomplete entities
// anyway.
func readRows(reader *csv.Reader, fn func(record []string) bool) error {
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		_ = fn(record)
	}
}

func parseCustomers(reader *csv.Reader, cols columnIndex) ([]Customer, error) {
	if err := cols.requireColumns("customer_id", "customer_zip_code_prefix"); err != nil {
		return nil, err
	}
	var out []Customer
	err := readRows(reader, func(record []string) bool {
		id := cols.field(record, "customer_id")
		if id == "" {
			return false
		}
		out = append(out, Customer{
			CustomerID: id,
			UniqueID:   cols.field(record, "customer_unique_id"),
			ZipPrefix:  cols.field(record, "customer_zip_code_prefix"),
			City:       cols.field(record, "customer_city"),
			State:      cols.field(record, "customer_state"),
		})
		return true
	})
	return out, err
}

func parseOrders(reader *csv.Reader, cols columnIndex) ([]Order, error) {
	if err := cols.requireColumns("order_id", "customer_id", "order_status",
		"order_purchase_timestamp", "order_estimated_delivery_date"); err != nil {
		return nil, err
	}
	var out []Order
	err := readRows(reader, func(record []string) bool {
		id := cols.field(record, "order_id")
		purchase, perr := time.Parse(timestampLayout, cols.field(record, "order_purchase_timestamp"))
		estimated, eerr := time.Parse(timestampLayout, cols.field(record, "order_estimated_delivery_date"))
		if id == "" || perr != nil || eerr != nil {
			return false
		}
		out = append(out, Order{
			OrderID:               id,
			CustomerID:            cols.field(record, "customer_id"),
			Status:                cols.field(record, "order_status"),
			PurchaseTimestamp:     purchase,
			ApprovedAt:            parseOptionalTime(cols.field(record, "order_approved_at")),
			DeliveredCarrierDate:  parseOptionalTime(cols.field(record, "order_delivered_carrier_date")),
			DeliveredCustomerDate: parseOptionalTime(cols.field(record, "order_delivered_customer_date")),
			EstimatedDeliveryDate: estimated,
		})
		return true
	})
	return out, err
}

func parseOrderItems(reader *csv.Reader, cols columnIndex) ([]OrderItem, error) {
	if err := cols.requireColumns("order_id", "product_id", "seller_id",
		"price", "freight_value"); err != nil {
		return nil, err
	}
	var out []OrderItem
	err := readRows(reader, func(record []string) bool {
		orderID := cols.field(record, "order_id")
		price, perr := strconv.ParseFloat(cols.field(record, "price"), 64)
		freight, ferr := strconv.ParseFloat(cols.field(record, "freight_value"), 64)
		if orderID == "" || perr != nil || ferr != nil {
			return false
		}
		itemID, _ := strconv.Atoi(cols.field(record, "order_item_id"))
		limit, _ := time.Parse(timestampLayout, cols.field(record, "shipping_limit_date"))
		out = append(out, OrderItem{
			OrderID:           orderID,
			ItemID:            itemID,
			ProductID:         cols.field(record, "product_id"),
			SellerID:          cols.field(record, "seller_id"),
			ShippingLimitDate: limit,
			Price:             price,
			FreightValue:      freight,
		})
		return true
	})
	return out, err
}

func parseReviews(reader *csv.Reader, cols columnIndex) ([]Review, error) {
	if err := cols.requireColumns("order_id", "review_score"); err != nil {
		return nil, err
	}
	var out []Review
	err := readRows(reader, func(record []string) bool {
		orderID := cols.field(record, "order_id")
		score, serr := strconv.Atoi(cols.field(record, "review_score"))
		if orderID == "" || serr != nil {
			return false
		}
		out = append(out, Review{
			ReviewID: cols.field(record, "review_id"),
			OrderID:  orderID,
			Score:    score,
		})
		return true
	})
	return out, err
}

func parseProducts(reader *csv.Reader, cols columnIndex) ([]Product, error) {
	if err := cols.requireColumns("product_id"); err != nil {
		return nil, err
	}
	var out []Product
	err := readRows(reader, func(record []string) bool {
		id := cols.field(record, "product_id")
		if id == "" {
			return false
		}
		out = append(out, Product{
			ProductID:    id,
			CategoryName: cols.field(record, "product_category_name"),
			// The raw dataset misspells the length columns
			NameLength:        parseOptionalFloat(cols.field(record, "product_name_lenght")),
			DescriptionLength: parseOptionalFloat(cols.field(record, "product_description_lenght")),
			PhotosQty:         parseOptionalFloat(cols.field(record, "product_photos_qty")),
			WeightG:           parseOptionalFloat(cols.field(record, "product_weight_g")),
			LengthCm:          parseOptionalFloat(cols.field(record, "product_length_cm")),
			HeightCm:          parseOptionalFloat(cols.field(record, "product_height_cm")),
			WidthCm:           parseOptionalFloat(cols.field(record, "product_width_cm")),
		})
		return true
	})
	return out, err
}

func parseSellers(reader *csv.Reader, cols columnIndex) ([]Seller, error) {
	if err := cols.requireColumns("seller_id", "seller_zip_code_prefix"); err != nil {
		return nil, err
	}
	var out []Seller
	err := readRows(reader, func(record []string) bool {
		id := cols.field(record, "seller_id")
		if id == "" {
			return false
		}
		out = append(out, Seller{
			SellerID:  id,
			ZipPrefix: cols.field(record, "seller_zip_code_prefix"),
			City:      cols.field(record, "seller_city"),
			State:     cols.field(record, "seller_state"),
		})
		return true
	})
	return out, err
}

func parseGeolocation(reader *csv.Reader, cols columnIndex) ([]Geolocation, error) {
	if err := cols.requireColumns("geolocation_zip_code_prefix",
		"geolocation_lat", "geolocation_lng"); err != nil {
		return nil, err
	}
	var out []Geolocation
	err := readRows(reader, func(record []string) bool {
		prefix := cols.field(record, "geolocation_zip_code_prefix")
		lat, laterr := strconv.ParseFloat(cols.field(record, "geolocation_lat"), 64)
		lng, lngerr := strconv.ParseFloat(cols.field(record, "geolocation_lng"), 64)
		if prefix == "" || laterr != nil || lngerr != nil {
			return false
		}
		out = append(out, Geolocation{
			ZipPrefix: prefix,
			Lat:       lat,
			Lng:       lng,
			City:      cols.field(record, "geolocation_city"),
			State:     cols.field(record, "geolocation_state"),
		})
		return true
	})
	return out, err
}

func parseCategoryTranslations(reader *csv.Reader, cols columnIndex) ([]CategoryTranslation, error) {
	if err := cols.requireColumns("product_category_name", "product_category_name_english"); err != nil {
		return nil, err
	}
	var out []CategoryTranslation
	err := readRows(reader, func(record []string) bool {
		name := cols.field(record, "product_category_name")
		english := cols.field(record, "product_category_name_english")
		if name == "" || english == "" {
			return false
		}
		out = append(out, CategoryTranslation{CategoryName: name, English: english})
		return true
	})
	return out, err
}

// parseOptionalTime parses a timestamp that may legitimately be blank
// (orders that were never approved or delivered)
func parseOptionalTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return nil
	}
	return &t
}

// parseOptionalFloat parses a numeric field that may be blank; blank
// becomes NaN so downstream joins can drop the row
func parseOptionalFloat(value string) float64 {
	if value == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
