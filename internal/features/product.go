package features

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"olistfeatures/internal/dataset"
	apperrors "olistfeatures/internal/errors"
)

// ProductFeatures derives the product-level feature tables. Wait times
// reuse the order engine's per-order table.
type ProductFeatures struct {
	data   *dataset.Dataset
	orders *OrderFeatures
	logger *slog.Logger
}

// NewProductFeatures creates a product feature engine over a loaded dataset
func NewProductFeatures(data *dataset.Dataset, logger *slog.Logger) *ProductFeatures {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductFeatures{
		data:   data,
		orders: NewOrderFeatures(data, logger),
		logger: logger,
	}
}

// Features returns the catalog attributes of each product with its
// category translated to English. Products whose category has no
// translation are excluded.
func (f *ProductFeatures) Features(ctx context.Context) []ProductFeatureRow {
	english := make(map[string]string, len(f.data.CategoryTranslations))
	for _, tr := range f.data.CategoryTranslations {
		english[tr.CategoryName] = tr.English
	}

	rows := make([]ProductFeatureRow, 0, len(f.data.Products))
	for _, p := range f.data.Products {
		category, ok := english[p.CategoryName]
		if !ok {
			continue
		}
		rows = append(rows, ProductFeatureRow{
			ProductID:         p.ProductID,
			Category:          category,
			NameLength:        p.NameLength,
			DescriptionLength: p.DescriptionLength,
			PhotosQty:         p.PhotosQty,
			WeightG:           p.WeightG,
			LengthCm:          p.LengthCm,
			HeightCm:          p.HeightCm,
			WidthCm:           p.WidthCm,
		})
	}
	sortByID(rows, func(r ProductFeatureRow) string { return r.ProductID })
	f.logger.DebugContext(ctx, "computed product features", "rows", len(rows))
	return rows
}

// Price averages the item price per product
func (f *ProductFeatures) Price(ctx context.Context) []ProductPrice {
	prices := make(map[string][]float64)
	for _, item := range f.data.OrderItems {
		prices[item.ProductID] = append(prices[item.ProductID], item.Price)
	}
	rows := make([]ProductPrice, 0, len(prices))
	for productID, values := range prices {
		rows = append(rows, ProductPrice{ProductID: productID, Price: mean(values)})
	}
	sortByID(rows, func(r ProductPrice) string { return r.ProductID })
	f.logger.DebugContext(ctx, "computed product prices", "rows", len(rows))
	return rows
}

// WaitTime averages the delivery wait of each product's delivered
// orders. Every line item contributes one observation, so an order
// holding several units weighs proportionally.
func (f *ProductFeatures) WaitTime(ctx context.Context) []ProductWaitTime {
	waits := indexBy(f.orders.WaitTime(ctx, true), func(r OrderWaitTime) string { return r.OrderID })

	perProduct := make(map[string][]float64)
	for _, item := range f.data.OrderItems {
		w, ok := waits[item.OrderID]
		if !ok {
			continue
		}
		perProduct[item.ProductID] = append(perProduct[item.ProductID], w.WaitTime)
	}
	rows := make([]ProductWaitTime, 0, len(perProduct))
	for productID, values := range perProduct {
		rows = append(rows, ProductWaitTime{ProductID: productID, WaitTime: mean(values)})
	}
	sortByID(rows, func(r ProductWaitTime) string { return r.ProductID })
	f.logger.DebugContext(ctx, "computed product wait times", "rows", len(rows))
	return rows
}

// Quantity counts demand per product: distinct orders and total line items
func (f *ProductFeatures) Quantity(ctx context.Context) []ProductQuantity {
	orders := make(map[string]map[string]bool)
	items := make(map[string]int)
	for _, item := range f.data.OrderItems {
		if orders[item.ProductID] == nil {
			orders[item.ProductID] = make(map[string]bool)
		}
		orders[item.ProductID][item.OrderID] = true
		items[item.ProductID]++
	}
	rows := make([]ProductQuantity, 0, len(orders))
	for productID, set := range orders {
		rows = append(rows, ProductQuantity{
			ProductID: productID,
			NOrders:   len(set),
			Quantity:  items[productID],
		})
	}
	sortByID(rows, func(r ProductQuantity) string { return r.ProductID })
	f.logger.DebugContext(ctx, "computed product quantities", "rows", len(rows))
	return rows
}

// Sales sums item prices per product
func (f *ProductFeatures) Sales(ctx context.Context) []ProductSales {
	sales := make(map[string]float64)
	for _, item := range f.data.OrderItems {
		sales[item.ProductID] += item.Price
	}
	rows := make([]ProductSales, 0, len(sales))
	for productID, total := range sales {
		rows = append(rows, ProductSales{ProductID: productID, Sales: total})
	}
	sortByID(rows, func(r ProductSales) string { return r.ProductID })
	f.logger.DebugContext(ctx, "computed product sales", "rows", len(rows))
	return rows
}

// ReviewScore aggregates review outcomes per product. Each distinct
// (order, product) pair contributes the order's review once; the cost
// of reviews follows the star-rating cost schedule.
func (f *ProductFeatures) ReviewScore(ctx context.Context) []ProductReviewScore {
	reviews := indexBy(f.orders.ReviewScore(ctx), func(r OrderReview) string { return r.OrderID })

	type pair struct{ orderID, productID string }
	seen := make(map[pair]bool)
	type acc struct {
		oneStars  []float64
		fiveStars []float64
		scores    []float64
		cost      float64
	}
	perProduct := make(map[string]*acc)
	for _, item := range f.data.OrderItems {
		p := pair{orderID: item.OrderID, productID: item.ProductID}
		if seen[p] {
			continue
		}
		seen[p] = true
		review, ok := reviews[item.OrderID]
		if !ok {
			continue
		}
		a, ok := perProduct[item.ProductID]
		if !ok {
			a = &acc{}
			perProduct[item.ProductID] = a
		}
		a.oneStars = append(a.oneStars, float64(review.DimIsOneStar))
		a.fiveStars = append(a.fiveStars, float64(review.DimIsFiveStar))
		a.scores = append(a.scores, float64(review.ReviewScore))
		a.cost += reviewCostSchedule[review.ReviewScore]
	}

	rows := make([]ProductReviewScore, 0, len(perProduct))
	for productID, a := range perProduct {
		rows = append(rows, ProductReviewScore{
			ProductID:        productID,
			ShareOfOneStars:  mean(a.oneStars),
			ShareOfFiveStars: mean(a.fiveStars),
			ReviewScore:      mean(a.scores),
			CostOfReviews:    a.cost,
		})
	}
	sortByID(rows, func(r ProductReviewScore) string { return r.ProductID })
	f.logger.DebugContext(ctx, "computed product review scores", "rows", len(rows))
	return rows
}

// TrainingData joins every product-level feature on product id and
// derives the revenue and profit columns. Products missing any feature
// table (never sold, never reviewed, untranslated category) are
// excluded.
func (f *ProductFeatures) TrainingData(ctx context.Context) []ProductTrainingRow {
	f.logger.InfoContext(ctx, "building product training table")

	waits := indexBy(f.WaitTime(ctx), func(r ProductWaitTime) string { return r.ProductID })
	prices := indexBy(f.Price(ctx), func(r ProductPrice) string { return r.ProductID })
	reviews := indexBy(f.ReviewScore(ctx), func(r ProductReviewScore) string { return r.ProductID })
	quantities := indexBy(f.Quantity(ctx), func(r ProductQuantity) string { return r.ProductID })
	sales := indexBy(f.Sales(ctx), func(r ProductSales) string { return r.ProductID })

	features := f.Features(ctx)
	rows := make([]ProductTrainingRow, 0, len(features))
	for _, feat := range features {
		wait, ok := waits[feat.ProductID]
		if !ok {
			continue
		}
		price, ok := prices[feat.ProductID]
		if !ok {
			continue
		}
		review, ok := reviews[feat.ProductID]
		if !ok {
			continue
		}
		quantity, ok := quantities[feat.ProductID]
		if !ok {
			continue
		}
		sale, ok := sales[feat.ProductID]
		if !ok {
			continue
		}
		revenues := olistSalesCut * sale.Sales
		rows = append(rows, ProductTrainingRow{
			ProductID:         feat.ProductID,
			Category:          feat.Category,
			NameLength:        feat.NameLength,
			DescriptionLength: feat.DescriptionLength,
			PhotosQty:         feat.PhotosQty,
			WeightG:           feat.WeightG,
			LengthCm:          feat.LengthCm,
			HeightCm:          feat.HeightCm,
			WidthCm:           feat.WidthCm,
			WaitTime:          wait.WaitTime,
			Price:             price.Price,
			ShareOfOneStars:   review.ShareOfOneStars,
			ShareOfFiveStars:  review.ShareOfFiveStars,
			ReviewScore:       review.ReviewScore,
			CostOfReviews:     review.CostOfReviews,
			NOrders:           quantity.NOrders,
			Quantity:          quantity.Quantity,
			Sales:             sale.Sales,
			Revenues:          revenues,
			Profits:           revenues - review.CostOfReviews,
		})
	}

	f.logger.InfoContext(ctx, "product training table ready", "rows", len(rows))
	return rows
}

// CategoryAggregate rolls the product training table up to category
// level. Numeric columns carry the requested statistic; quantity is
// always the summed sales volume of the category.
func (f *ProductFeatures) CategoryAggregate(ctx context.Context, agg AggFunc) ([]CategoryRow, error) {
	if agg != AggMean && agg != AggMedian {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown aggregation %q: must be mean or median", agg), nil)
	}

	type acc struct {
		nameLength, descriptionLength, photosQty []float64
		weightG, lengthCm, heightCm, widthCm     []float64
		waitTime, price                          []float64
		oneStars, fiveStars, scores, costs       []float64
		nOrders, sales, revenues, profits        []float64
		quantity                                 int
	}
	perCategory := make(map[string]*acc)
	for _, row := range f.TrainingData(ctx) {
		a, ok := perCategory[row.Category]
		if !ok {
			a = &acc{}
			perCategory[row.Category] = a
		}
		a.nameLength = append(a.nameLength, row.NameLength)
		a.descriptionLength = append(a.descriptionLength, row.DescriptionLength)
		a.photosQty = append(a.photosQty, row.PhotosQty)
		a.weightG = append(a.weightG, row.WeightG)
		a.lengthCm = append(a.lengthCm, row.LengthCm)
		a.heightCm = append(a.heightCm, row.HeightCm)
		a.widthCm = append(a.widthCm, row.WidthCm)
		a.waitTime = append(a.waitTime, row.WaitTime)
		a.price = append(a.price, row.Price)
		a.oneStars = append(a.oneStars, row.ShareOfOneStars)
		a.fiveStars = append(a.fiveStars, row.ShareOfFiveStars)
		a.scores = append(a.scores, row.ReviewScore)
		a.costs = append(a.costs, row.CostOfReviews)
		a.nOrders = append(a.nOrders, float64(row.NOrders))
		a.sales = append(a.sales, row.Sales)
		a.revenues = append(a.revenues, row.Revenues)
		a.profits = append(a.profits, row.Profits)
		a.quantity += row.Quantity
	}

	rows := make([]CategoryRow, 0, len(perCategory))
	for category, a := range perCategory {
		rows = append(rows, CategoryRow{
			Category:          category,
			NameLength:        aggregate(a.nameLength, agg),
			DescriptionLength: aggregate(a.descriptionLength, agg),
			PhotosQty:         aggregate(a.photosQty, agg),
			WeightG:           aggregate(a.weightG, agg),
			LengthCm:          aggregate(a.lengthCm, agg),
			HeightCm:          aggregate(a.heightCm, agg),
			WidthCm:           aggregate(a.widthCm, agg),
			WaitTime:          aggregate(a.waitTime, agg),
			Price:             aggregate(a.price, agg),
			ShareOfOneStars:   aggregate(a.oneStars, agg),
			ShareOfFiveStars:  aggregate(a.fiveStars, agg),
			ReviewScore:       aggregate(a.scores, agg),
			CostOfReviews:     aggregate(a.costs, agg),
			NOrders:           aggregate(a.nOrders, agg),
			Quantity:          a.quantity,
			Sales:             aggregate(a.sales, agg),
			Revenues:          aggregate(a.revenues, agg),
			Profits:           aggregate(a.profits, agg),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })

	f.logger.InfoContext(ctx, "category aggregate ready",
		"rows", len(rows),
		"agg", string(agg))
	return rows, nil
}
