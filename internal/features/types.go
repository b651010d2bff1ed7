package features

import (
	"time"
)

// Review cost schedule: the proxy business cost of a review by star
// rating. Four and five star reviews cost nothing.
var reviewCostSchedule = map[int]float64{
	1: 100,
	2: 50,
	3: 40,
	4: 0,
	5: 0,
}

const (
	// olistSalesCut is the marketplace share of each sale
	olistSalesCut = 0.10
	// olistMonthlyFee is the flat subscription fee charged per month
	// of seller tenure
	olistMonthlyFee = 80.0
	// meanMonthDays is the average Gregorian month length in days,
	// used to convert a tenure span into months
	meanMonthDays = 30.436875
	// hoursPerDay converts duration hours into day units
	hoursPerDay = 24.0
)

// AggFunc selects the statistic used for category-level aggregation
type AggFunc string

const (
	AggMean   AggFunc = "mean"
	AggMedian AggFunc = "median"
)

// OrderWaitTime is one order's delivery timing profile, in days
type OrderWaitTime struct {
	OrderID          string
	WaitTime         float64
	ExpectedWaitTime float64
	DelayVsExpected  float64
	OrderStatus      string
}

// OrderReview carries the star rating of an order plus 0/1 flags for
// the two extreme ratings
type OrderReview struct {
	OrderID       string
	DimIsFiveStar int
	DimIsOneStar  int
	ReviewScore   int
}

// OrderProductCount is the raw line-item count of an order. Two units
// of the same product count as two.
type OrderProductCount struct {
	OrderID          string
	NumberOfProducts int
}

// OrderSellerCount is the distinct-seller count of an order
type OrderSellerCount struct {
	OrderID         string
	NumberOfSellers int
}

// OrderCharges sums price and freight across all items of an order
type OrderCharges struct {
	OrderID      string
	Price        float64
	FreightValue float64
}

// OrderDistance is the mean seller-customer great-circle distance of
// an order, in kilometers
type OrderDistance struct {
	OrderID                string
	DistanceSellerCustomer float64
}

// OrderTrainingRow is the flat order-level training table row.
// DistanceSellerCustomer is NaN unless the table was built with
// distances enabled.
type OrderTrainingRow struct {
	OrderID                string
	WaitTime               float64
	ExpectedWaitTime       float64
	DelayVsExpected        float64
	OrderStatus            string
	DimIsFiveStar          int
	DimIsOneStar           int
	ReviewScore            int
	NumberOfProducts       int
	NumberOfSellers        int
	Price                  float64
	FreightValue           float64
	DistanceSellerCustomer float64
}

// ProductFeatureRow is the catalog profile of a product with its
// English category label
type ProductFeatureRow struct {
	ProductID         string
	Category          string
	NameLength        float64
	DescriptionLength float64
	PhotosQty         float64
	WeightG           float64
	LengthCm          float64
	HeightCm          float64
	WidthCm           float64
}

// ProductPrice is the mean item price of a product
type ProductPrice struct {
	ProductID string
	Price     float64
}

// ProductWaitTime is the mean delivery wait of a product's orders
type ProductWaitTime struct {
	ProductID string
	WaitTime  float64
}

// ProductQuantity counts demand for a product: distinct orders and
// total line items (quantity exceeds n_orders when a product is
// ordered several times within one order)
type ProductQuantity struct {
	ProductID string
	NOrders   int
	Quantity  int
}

// ProductSales sums item prices per product
type ProductSales struct {
	ProductID string
	Sales     float64
}

// ProductReviewScore aggregates order-level review flags per product,
// with the cost schedule applied
type ProductReviewScore struct {
	ProductID        string
	ShareOfOneStars  float64
	ShareOfFiveStars float64
	ReviewScore      float64
	CostOfReviews    float64
}

// ProductTrainingRow is the flat product-level training table row
type ProductTrainingRow struct {
	ProductID         string
	Category          string
	NameLength        float64
	DescriptionLength float64
	PhotosQty         float64
	WeightG           float64
	LengthCm          float64
	HeightCm          float64
	WidthCm           float64
	WaitTime          float64
	Price             float64
	ShareOfOneStars   float64
	ShareOfFiveStars  float64
	ReviewScore       float64
	CostOfReviews     float64
	NOrders           int
	Quantity          int
	Sales             float64
	Revenues          float64
	Profits           float64
}

// CategoryRow aggregates the product training table per category.
// Every numeric column carries the configured statistic except
// Quantity, which is always the summed sales volume.
type CategoryRow struct {
	Category          string
	NameLength        float64
	DescriptionLength float64
	PhotosQty         float64
	WeightG           float64
	LengthCm          float64
	HeightCm          float64
	WidthCm           float64
	WaitTime          float64
	Price             float64
	ShareOfOneStars   float64
	ShareOfFiveStars  float64
	ReviewScore       float64
	CostOfReviews     float64
	NOrders           float64
	Quantity          int
	Sales             float64
	Revenues          float64
	Profits           float64
}

// SellerFeatureRow is the deduplicated identity of a seller
type SellerFeatureRow struct {
	SellerID string
	City     string
	State    string
}

// SellerDelayWait carries a seller's mean handoff delay to the carrier
// and mean customer wait, in days, over its delivered orders
type SellerDelayWait struct {
	SellerID       string
	DelayToCarrier float64
	WaitTime       float64
}

// SellerActiveDates spans a seller's first and last approved sale.
// MonthsOnOlist is the rounded month count of that span.
type SellerActiveDates struct {
	SellerID      string
	DateFirstSale time.Time
	DateLastSale  time.Time
	MonthsOnOlist float64
}

// SellerQuantity counts a seller's demand: distinct orders, total line
// items and their ratio
type SellerQuantity struct {
	SellerID         string
	NOrders          int
	Quantity         int
	QuantityPerOrder float64
}

// SellerSales sums item prices per seller
type SellerSales struct {
	SellerID string
	Sales    float64
}

// SellerReviewScore aggregates order-level review flags per seller,
// with the cost schedule applied
type SellerReviewScore struct {
	SellerID         string
	ShareOfOneStars  float64
	ShareOfFiveStars float64
	ReviewScore      float64
	CostOfReviews    float64
}

// SellerTrainingRow is the flat seller-level training table row
type SellerTrainingRow struct {
	SellerID         string
	City             string
	State            string
	DelayToCarrier   float64
	WaitTime         float64
	DateFirstSale    time.Time
	DateLastSale     time.Time
	MonthsOnOlist    float64
	ShareOfOneStars  float64
	ShareOfFiveStars float64
	ReviewScore      float64
	CostOfReviews    float64
	NOrders          int
	Quantity         int
	QuantityPerOrder float64
	Sales            float64
	Revenues         float64
	Profits          float64
}
