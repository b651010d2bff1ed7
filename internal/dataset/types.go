package dataset

import (
	"time"
)

// TableName identifies one of the source tables of the Olist dataset.
// The set is closed: loading fails fast when any table is missing.
type TableName string

const (
	TableCustomers           TableName = "customers"
	TableOrders              TableName = "orders"
	TableOrderItems          TableName = "order_items"
	TableOrderReviews        TableName = "order_reviews"
	TableProducts            TableName = "products"
	TableSellers             TableName = "sellers"
	TableGeolocation         TableName = "geolocation"
	TableCategoryTranslation TableName = "product_category_name_translation"
)

// AllTables lists every table required to build feature tables
var AllTables = []TableName{
	TableCustomers,
	TableOrders,
	TableOrderItems,
	TableOrderReviews,
	TableProducts,
	TableSellers,
	TableGeolocation,
	TableCategoryTranslation,
}

// FileName returns the CSV file name for the table as published in the
// Olist dataset (version 2)
func (t TableName) FileName() string {
	if t == TableCategoryTranslation {
		return "product_category_name_translation.csv"
	}
	return "olist_" + string(t) + "_dataset.csv"
}

// Order is a purchase with its lifecycle timestamps.
// Approval and delivery timestamps are absent for orders that never
// reached the corresponding state.
type Order struct {
	OrderID               string
	CustomerID            string
	Status                string
	PurchaseTimestamp     time.Time
	ApprovedAt            *time.Time
	DeliveredCarrierDate  *time.Time
	DeliveredCustomerDate *time.Time
	EstimatedDeliveryDate time.Time
}

// IsDelivered reports whether the order reached the customer
func (o Order) IsDelivered() bool {
	return o.Status == "delivered"
}

// OrderItem is one line of an order. An order may carry several items,
// several sellers and several units of the same product.
type OrderItem struct {
	OrderID           string
	ItemID            int
	ProductID         string
	SellerID          string
	ShippingLimitDate time.Time
	Price             float64
	FreightValue      float64
}

// Review is a customer review attached to an order
type Review struct {
	ReviewID string
	OrderID  string
	Score    int
}

// Product carries the physical attributes of a catalog product.
// Numeric attributes are NaN when the source field is blank.
type Product struct {
	ProductID         string
	CategoryName      string
	NameLength        float64
	DescriptionLength float64
	PhotosQty         float64
	WeightG           float64
	LengthCm          float64
	HeightCm          float64
	WidthCm           float64
}

// Seller is a marketplace seller with its postal-code prefix
type Seller struct {
	SellerID  string
	ZipPrefix string
	City      string
	State     string
}

// Customer is an order-scoped customer record with its postal-code prefix
type Customer struct {
	CustomerID string
	UniqueID   string
	ZipPrefix  string
	City       string
	State      string
}

// Geolocation maps a postal-code prefix to coordinates. Multiple rows
// may share the same prefix; consumers resolve the first occurrence.
type Geolocation struct {
	ZipPrefix string
	Lat       float64
	Lng       float64
	City      string
	State     string
}

// CategoryTranslation maps a Portuguese category code to its English label
type CategoryTranslation struct {
	CategoryName string
	English      string
}

// Dataset is the full set of source tables, loaded once and treated as
// an immutable snapshot by the feature engines.
type Dataset struct {
	Customers            []Customer
	Orders               []Order
	OrderItems           []OrderItem
	OrderReviews         []Review
	Products             []Product
	Sellers              []Seller
	Geolocation          []Geolocation
	CategoryTranslations []CategoryTranslation
}

// RowCount returns the number of rows loaded for the named table
func (d *Dataset) RowCount(name TableName) int {
	switch name {
	case TableCustomers:
		return len(d.Customers)
	case TableOrders:
		return len(d.Orders)
	case TableOrderItems:
		return len(d.OrderItems)
	case TableOrderReviews:
		return len(d.OrderReviews)
	case TableProducts:
		return len(d.Products)
	case TableSellers:
		return len(d.Sellers)
	case TableGeolocation:
		return len(d.Geolocation)
	case TableCategoryTranslation:
		return len(d.CategoryTranslations)
	default:
		return 0
	}
}
