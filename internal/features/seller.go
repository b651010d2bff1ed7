package features

import (
	"context"
	"log/slog"
	"math"
	"time"

	"olistfeatures/internal/dataset"
)

// SellerFeatures derives the seller-level feature tables. Review
// aggregation reuses the order engine's review table.
type SellerFeatures struct {
	data   *dataset.Dataset
	orders *OrderFeatures
	logger *slog.Logger
}

// NewSellerFeatures creates a seller feature engine over a loaded dataset
func NewSellerFeatures(data *dataset.Dataset, logger *slog.Logger) *SellerFeatures {
	if logger == nil {
		logger = slog.Default()
	}
	return &SellerFeatures{
		data:   data,
		orders: NewOrderFeatures(data, logger),
		logger: logger,
	}
}

// Features returns the identity of each seller, deduplicated on seller id
func (f *SellerFeatures) Features(ctx context.Context) []SellerFeatureRow {
	seen := make(map[string]bool, len(f.data.Sellers))
	rows := make([]SellerFeatureRow, 0, len(f.data.Sellers))
	for _, s := range f.data.Sellers {
		if seen[s.SellerID] {
			continue
		}
		seen[s.SellerID] = true
		rows = append(rows, SellerFeatureRow{
			SellerID: s.SellerID,
			City:     s.City,
			State:    s.State,
		})
	}
	sortByID(rows, func(r SellerFeatureRow) string { return r.SellerID })
	f.logger.DebugContext(ctx, "computed seller features", "rows", len(rows))
	return rows
}

// DelayWaitTime measures each seller's logistics performance over its
// delivered line items: the mean handoff delay past the shipping limit
// (floored at zero, zero when no handoff was recorded) and the mean
// customer wait in days.
func (f *SellerFeatures) DelayWaitTime(ctx context.Context) []SellerDelayWait {
	delivered := make(map[string]dataset.Order, len(f.data.Orders))
	for _, o := range f.data.Orders {
		if o.IsDelivered() {
			delivered[o.OrderID] = o
		}
	}

	type acc struct {
		delays []float64
		waits  []float64
	}
	perSeller := make(map[string]*acc)
	for _, item := range f.data.OrderItems {
		o, ok := delivered[item.OrderID]
		if !ok {
			continue
		}
		a, ok := perSeller[item.SellerID]
		if !ok {
			a = &acc{}
			perSeller[item.SellerID] = a
		}
		if o.DeliveredCarrierDate != nil {
			a.delays = append(a.delays, daysBetween(item.ShippingLimitDate, *o.DeliveredCarrierDate))
		}
		if o.DeliveredCustomerDate != nil {
			a.waits = append(a.waits, daysBetween(o.PurchaseTimestamp, *o.DeliveredCustomerDate))
		}
	}

	rows := make([]SellerDelayWait, 0, len(perSeller))
	for sellerID, a := range perSeller {
		delay := clampNonNegative(mean(a.delays))
		if math.IsNaN(delay) {
			delay = 0
		}
		rows = append(rows, SellerDelayWait{
			SellerID:       sellerID,
			DelayToCarrier: delay,
			WaitTime:       mean(a.waits),
		})
	}
	sortByID(rows, func(r SellerDelayWait) string { return r.SellerID })
	f.logger.DebugContext(ctx, "computed seller delays", "rows", len(rows))
	return rows
}

// ActiveDates spans each seller's tenure between its first and last
// approved sale, with the span converted to months of the mean
// Gregorian length. Orders never approved do not count.
func (f *SellerFeatures) ActiveDates(ctx context.Context) []SellerActiveDates {
	approved := make(map[string]time.Time, len(f.data.Orders))
	for _, o := range f.data.Orders {
		if o.ApprovedAt != nil {
			approved[o.OrderID] = *o.ApprovedAt
		}
	}

	type span struct {
		first time.Time
		last  time.Time
	}
	perSeller := make(map[string]*span)
	for _, item := range f.data.OrderItems {
		at, ok := approved[item.OrderID]
		if !ok {
			continue
		}
		s, ok := perSeller[item.SellerID]
		if !ok {
			perSeller[item.SellerID] = &span{first: at, last: at}
			continue
		}
		if at.Before(s.first) {
			s.first = at
		}
		if at.After(s.last) {
			s.last = at
		}
	}

	rows := make([]SellerActiveDates, 0, len(perSeller))
	for sellerID, s := range perSeller {
		months := math.Round(daysBetween(s.first, s.last) / meanMonthDays)
		rows = append(rows, SellerActiveDates{
			SellerID:      sellerID,
			DateFirstSale: s.first,
			DateLastSale:  s.last,
			MonthsOnOlist: months,
		})
	}
	sortByID(rows, func(r SellerActiveDates) string { return r.SellerID })
	f.logger.DebugContext(ctx, "computed seller active dates", "rows", len(rows))
	return rows
}

// Quantity counts each seller's demand: distinct orders, total line
// items and items per order
func (f *SellerFeatures) Quantity(ctx context.Context) []SellerQuantity {
	orders := make(map[string]map[string]bool)
	items := make(map[string]int)
	for _, item := range f.data.OrderItems {
		if orders[item.SellerID] == nil {
			orders[item.SellerID] = make(map[string]bool)
		}
		orders[item.SellerID][item.OrderID] = true
		items[item.SellerID]++
	}
	rows := make([]SellerQuantity, 0, len(orders))
	for sellerID, set := range orders {
		n := len(set)
		rows = append(rows, SellerQuantity{
			SellerID:         sellerID,
			NOrders:          n,
			Quantity:         items[sellerID],
			QuantityPerOrder: float64(items[sellerID]) / float64(n),
		})
	}
	sortByID(rows, func(r SellerQuantity) string { return r.SellerID })
	f.logger.DebugContext(ctx, "computed seller quantities", "rows", len(rows))
	return rows
}

// Sales sums item prices per seller
func (f *SellerFeatures) Sales(ctx context.Context) []SellerSales {
	sales := make(map[string]float64)
	for _, item := range f.data.OrderItems {
		sales[item.SellerID] += item.Price
	}
	rows := make([]SellerSales, 0, len(sales))
	for sellerID, total := range sales {
		rows = append(rows, SellerSales{SellerID: sellerID, Sales: total})
	}
	sortByID(rows, func(r SellerSales) string { return r.SellerID })
	f.logger.DebugContext(ctx, "computed seller sales", "rows", len(rows))
	return rows
}

// ReviewScore aggregates review outcomes per seller. Each distinct
// (order, seller) pair contributes the order's review once; the cost
// of reviews follows the star-rating cost schedule.
func (f *SellerFeatures) ReviewScore(ctx context.Context) []SellerReviewScore {
	reviews := indexBy(f.orders.ReviewScore(ctx), func(r OrderReview) string { return r.OrderID })

	type pair struct{ orderID, sellerID string }
	seen := make(map[pair]bool)
	type acc struct {
		oneStars  []float64
		fiveStars []float64
		scores    []float64
		cost      float64
	}
	perSeller := make(map[string]*acc)
	for _, item := range f.data.OrderItems {
		p := pair{orderID: item.OrderID, sellerID: item.SellerID}
		if seen[p] {
			continue
		}
		seen[p] = true
		review, ok := reviews[item.OrderID]
		if !ok {
			continue
		}
		a, ok := perSeller[item.SellerID]
		if !ok {
			a = &acc{}
			perSeller[item.SellerID] = a
		}
		a.oneStars = append(a.oneStars, float64(review.DimIsOneStar))
		a.fiveStars = append(a.fiveStars, float64(review.DimIsFiveStar))
		a.scores = append(a.scores, float64(review.ReviewScore))
		a.cost += reviewCostSchedule[review.ReviewScore]
	}

	rows := make([]SellerReviewScore, 0, len(perSeller))
	for sellerID, a := range perSeller {
		rows = append(rows, SellerReviewScore{
			SellerID:         sellerID,
			ShareOfOneStars:  mean(a.oneStars),
			ShareOfFiveStars: mean(a.fiveStars),
			ReviewScore:      mean(a.scores),
			CostOfReviews:    a.cost,
		})
	}
	sortByID(rows, func(r SellerReviewScore) string { return r.SellerID })
	f.logger.DebugContext(ctx, "computed seller review scores", "rows", len(rows))
	return rows
}

// TrainingData joins every seller-level feature on seller id and
// derives the revenue and profit columns. Revenues combine the monthly
// subscription fee over the seller's tenure with the marketplace cut
// of its sales. Sellers missing any feature table are excluded.
func (f *SellerFeatures) TrainingData(ctx context.Context) []SellerTrainingRow {
	f.logger.InfoContext(ctx, "building seller training table")

	delays := indexBy(f.DelayWaitTime(ctx), func(r SellerDelayWait) string { return r.SellerID })
	dates := indexBy(f.ActiveDates(ctx), func(r SellerActiveDates) string { return r.SellerID })
	quantities := indexBy(f.Quantity(ctx), func(r SellerQuantity) string { return r.SellerID })
	sales := indexBy(f.Sales(ctx), func(r SellerSales) string { return r.SellerID })
	reviews := indexBy(f.ReviewScore(ctx), func(r SellerReviewScore) string { return r.SellerID })

	features := f.Features(ctx)
	rows := make([]SellerTrainingRow, 0, len(features))
	for _, feat := range features {
		delay, ok := delays[feat.SellerID]
		if !ok {
			continue
		}
		date, ok := dates[feat.SellerID]
		if !ok {
			continue
		}
		quantity, ok := quantities[feat.SellerID]
		if !ok {
			continue
		}
		sale, ok := sales[feat.SellerID]
		if !ok {
			continue
		}
		review, ok := reviews[feat.SellerID]
		if !ok {
			continue
		}
		revenues := date.MonthsOnOlist*olistMonthlyFee + olistSalesCut*sale.Sales
		rows = append(rows, SellerTrainingRow{
			SellerID:         feat.SellerID,
			City:             feat.City,
			State:            feat.State,
			DelayToCarrier:   delay.DelayToCarrier,
			WaitTime:         delay.WaitTime,
			DateFirstSale:    date.DateFirstSale,
			DateLastSale:     date.DateLastSale,
			MonthsOnOlist:    date.MonthsOnOlist,
			ShareOfOneStars:  review.ShareOfOneStars,
			ShareOfFiveStars: review.ShareOfFiveStars,
			ReviewScore:      review.ReviewScore,
			CostOfReviews:    review.CostOfReviews,
			NOrders:          quantity.NOrders,
			Quantity:         quantity.Quantity,
			QuantityPerOrder: quantity.QuantityPerOrder,
			Sales:            sale.Sales,
			Revenues:         revenues,
			Profits:          revenues - review.CostOfReviews,
		})
	}

	f.logger.InfoContext(ctx, "seller training table ready", "rows", len(rows))
	return rows
}
