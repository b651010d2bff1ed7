package features

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"olistfeatures/internal/dataset"
)

// OrderFeatures derives the order-level feature tables
type OrderFeatures struct {
	data   *dataset.Dataset
	logger *slog.Logger
}

// NewOrderFeatures creates an order feature engine over a loaded dataset
func NewOrderFeatures(data *dataset.Dataset, logger *slog.Logger) *OrderFeatures {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderFeatures{data: data, logger: logger}
}

// TrainingOptions controls which orders enter the training table and
// whether the distance feature is computed
type TrainingOptions struct {
	// IsDelivered restricts the table to delivered orders
	IsDelivered bool
	// WithDistance adds the mean seller-customer distance column
	WithDistance bool
}

// DefaultTrainingOptions matches the standard training setup: delivered
// orders only, no distance column
func DefaultTrainingOptions() TrainingOptions {
	return TrainingOptions{IsDelivered: true}
}

// WaitTime computes per-order delivery timing in days. When
// filterDelivered is set, only delivered orders are returned; otherwise
// undelivered orders appear with NaN actual wait and delay.
func (f *OrderFeatures) WaitTime(ctx context.Context, filterDelivered bool) []OrderWaitTime {
	rows := make([]OrderWaitTime, 0, len(f.data.Orders))
	for _, o := range f.data.Orders {
		if filterDelivered && !o.IsDelivered() {
			continue
		}
		row := OrderWaitTime{
			OrderID:          o.OrderID,
			WaitTime:         math.NaN(),
			ExpectedWaitTime: daysBetween(o.PurchaseTimestamp, o.EstimatedDeliveryDate),
			DelayVsExpected:  math.NaN(),
			OrderStatus:      o.Status,
		}
		if o.DeliveredCustomerDate != nil {
			row.WaitTime = daysBetween(o.PurchaseTimestamp, *o.DeliveredCustomerDate)
			row.DelayVsExpected = clampNonNegative(daysBetween(o.EstimatedDeliveryDate, *o.DeliveredCustomerDate))
		}
		rows = append(rows, row)
	}
	sortByID(rows, func(r OrderWaitTime) string { return r.OrderID })
	f.logger.DebugContext(ctx, "computed order wait times",
		"rows", len(rows),
		"delivered_only", filterDelivered)
	return rows
}

// ReviewScore returns the star rating per reviewed order with one-star
// and five-star indicator flags. Orders with several reviews keep the
// first review in source order; unreviewed orders are absent.
func (f *OrderFeatures) ReviewScore(ctx context.Context) []OrderReview {
	seen := make(map[string]bool, len(f.data.OrderReviews))
	rows := make([]OrderReview, 0, len(f.data.OrderReviews))
	for _, r := range f.data.OrderReviews {
		if seen[r.OrderID] {
			continue
		}
		seen[r.OrderID] = true
		rows = append(rows, OrderReview{
			OrderID:       r.OrderID,
			DimIsFiveStar: boolToFlag(r.Score == 5),
			DimIsOneStar:  boolToFlag(r.Score == 1),
			ReviewScore:   r.Score,
		})
	}
	sortByID(rows, func(r OrderReview) string { return r.OrderID })
	f.logger.DebugContext(ctx, "computed order review scores", "rows", len(rows))
	return rows
}

// NumberOfProducts counts line items per order. Repeated units of the
// same product each count.
func (f *OrderFeatures) NumberOfProducts(ctx context.Context) []OrderProductCount {
	counts := make(map[string]int)
	for _, item := range f.data.OrderItems {
		counts[item.OrderID]++
	}
	rows := make([]OrderProductCount, 0, len(counts))
	for orderID, n := range counts {
		rows = append(rows, OrderProductCount{OrderID: orderID, NumberOfProducts: n})
	}
	sortByID(rows, func(r OrderProductCount) string { return r.OrderID })
	f.logger.DebugContext(ctx, "computed order product counts", "rows", len(rows))
	return rows
}

// NumberOfSellers counts distinct sellers per order
func (f *OrderFeatures) NumberOfSellers(ctx context.Context) []OrderSellerCount {
	sellers := make(map[string]map[string]bool)
	for _, item := range f.data.OrderItems {
		if sellers[item.OrderID] == nil {
			sellers[item.OrderID] = make(map[string]bool)
		}
		sellers[item.OrderID][item.SellerID] = true
	}
	rows := make([]OrderSellerCount, 0, len(sellers))
	for orderID, set := range sellers {
		rows = append(rows, OrderSellerCount{OrderID: orderID, NumberOfSellers: len(set)})
	}
	sortByID(rows, func(r OrderSellerCount) string { return r.OrderID })
	f.logger.DebugContext(ctx, "computed order seller counts", "rows", len(rows))
	return rows
}

// PriceAndFreight sums item price and freight charges per order
func (f *OrderFeatures) PriceAndFreight(ctx context.Context) []OrderCharges {
	charges := make(map[string]*OrderCharges)
	order := make([]string, 0)
	for _, item := range f.data.OrderItems {
		c, ok := charges[item.OrderID]
		if !ok {
			c = &OrderCharges{OrderID: item.OrderID}
			charges[item.OrderID] = c
			order = append(order, item.OrderID)
		}
		c.Price += item.Price
		c.FreightValue += item.FreightValue
	}
	rows := make([]OrderCharges, 0, len(order))
	for _, orderID := range order {
		rows = append(rows, *charges[orderID])
	}
	sortByID(rows, func(r OrderCharges) string { return r.OrderID })
	f.logger.DebugContext(ctx, "computed order charges", "rows", len(rows))
	return rows
}

// DistanceSellerCustomer computes the mean great-circle distance in km
// between each order's sellers and its customer. Each line item
// contributes one seller-customer pair. Orders whose customer or
// sellers have no resolvable coordinates are excluded.
func (f *OrderFeatures) DistanceSellerCustomer(ctx context.Context) []OrderDistance {
	coords := resolvePrefixCoordinates(f.data.Geolocation)

	sellerLoc := make(map[string]coordinate, len(f.data.Sellers))
	for _, s := range f.data.Sellers {
		if c, ok := coords[s.ZipPrefix]; ok {
			sellerLoc[s.SellerID] = c
		}
	}
	customerLoc := make(map[string]coordinate, len(f.data.Customers))
	for _, c := range f.data.Customers {
		if loc, ok := coords[c.ZipPrefix]; ok {
			customerLoc[c.CustomerID] = loc
		}
	}
	orderCustomer := make(map[string]string, len(f.data.Orders))
	for _, o := range f.data.Orders {
		orderCustomer[o.OrderID] = o.CustomerID
	}

	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[string]*acc)
	unresolved := 0
	for _, item := range f.data.OrderItems {
		sLoc, ok := sellerLoc[item.SellerID]
		if !ok {
			unresolved++
			continue
		}
		cLoc, ok := customerLoc[orderCustomer[item.OrderID]]
		if !ok {
			unresolved++
			continue
		}
		a, ok := sums[item.OrderID]
		if !ok {
			a = &acc{}
			sums[item.OrderID] = a
		}
		a.sum += Haversine(sLoc.lat, sLoc.lng, cLoc.lat, cLoc.lng)
		a.count++
	}

	rows := make([]OrderDistance, 0, len(sums))
	for orderID, a := range sums {
		rows = append(rows, OrderDistance{
			OrderID:                orderID,
			DistanceSellerCustomer: a.sum / float64(a.count),
		})
	}
	sortByID(rows, func(r OrderDistance) string { return r.OrderID })
	f.logger.DebugContext(ctx, "computed seller-customer distances",
		"rows", len(rows),
		"unresolved_items", unresolved)
	return rows
}

// TrainingData builds the flat order training table by joining every
// order-level feature on order id. Orders missing any feature (no
// review, no items) are excluded, and rows with a NaN numeric value
// are dropped.
func (f *OrderFeatures) TrainingData(ctx context.Context, opts TrainingOptions) []OrderTrainingRow {
	f.logger.InfoContext(ctx, "building order training table",
		"delivered_only", opts.IsDelivered,
		"with_distance", opts.WithDistance)

	reviews := indexBy(f.ReviewScore(ctx), func(r OrderReview) string { return r.OrderID })
	products := indexBy(f.NumberOfProducts(ctx), func(r OrderProductCount) string { return r.OrderID })
	sellers := indexBy(f.NumberOfSellers(ctx), func(r OrderSellerCount) string { return r.OrderID })
	charges := indexBy(f.PriceAndFreight(ctx), func(r OrderCharges) string { return r.OrderID })

	var distances map[string]OrderDistance
	if opts.WithDistance {
		distances = indexBy(f.DistanceSellerCustomer(ctx), func(r OrderDistance) string { return r.OrderID })
	}

	waits := f.WaitTime(ctx, opts.IsDelivered)
	rows := make([]OrderTrainingRow, 0, len(waits))
	for _, w := range waits {
		review, ok := reviews[w.OrderID]
		if !ok {
			continue
		}
		productCount, ok := products[w.OrderID]
		if !ok {
			continue
		}
		sellerCount, ok := sellers[w.OrderID]
		if !ok {
			continue
		}
		charge, ok := charges[w.OrderID]
		if !ok {
			continue
		}
		row := OrderTrainingRow{
			OrderID:                w.OrderID,
			WaitTime:               w.WaitTime,
			ExpectedWaitTime:       w.ExpectedWaitTime,
			DelayVsExpected:        w.DelayVsExpected,
			OrderStatus:            w.OrderStatus,
			DimIsFiveStar:          review.DimIsFiveStar,
			DimIsOneStar:           review.DimIsOneStar,
			ReviewScore:            review.ReviewScore,
			NumberOfProducts:       productCount.NumberOfProducts,
			NumberOfSellers:        sellerCount.NumberOfSellers,
			Price:                  charge.Price,
			FreightValue:           charge.FreightValue,
			DistanceSellerCustomer: math.NaN(),
		}
		if opts.WithDistance {
			dist, ok := distances[w.OrderID]
			if !ok {
				continue
			}
			row.DistanceSellerCustomer = dist.DistanceSellerCustomer
		}
		if trainingRowHasNaN(row, opts.WithDistance) {
			continue
		}
		rows = append(rows, row)
	}

	f.logger.InfoContext(ctx, "order training table ready", "rows", len(rows))
	return rows
}

func trainingRowHasNaN(row OrderTrainingRow, withDistance bool) bool {
	values := []float64{row.WaitTime, row.ExpectedWaitTime, row.DelayVsExpected, row.Price, row.FreightValue}
	if withDistance {
		values = append(values, row.DistanceSellerCustomer)
	}
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func boolToFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// sortByID orders rows by their entity id so output tables are
// deterministic across runs
func sortByID[T any](rows []T, key func(T) string) {
	sort.Slice(rows, func(i, j int) bool { return key(rows[i]) < key(rows[j]) })
}

// indexBy builds a lookup map keyed by the row's entity id
func indexBy[T any](rows []T, key func(T) string) map[string]T {
	m := make(map[string]T, len(rows))
	for _, r := range rows {
		m[key(r)] = r
	}
	return m
}
