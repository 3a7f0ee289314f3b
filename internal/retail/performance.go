// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retail

import (
	"context"
	"database/sql"

	"github.com/pdiddy/insight-engine/internal/tool"
)

// Tools returns every retail data tool bound to the store, ready for
// registration with the gateway.
func Tools(s *Store) []tool.Tool {
	return []tool.Tool{
		CategoryPerformance{store: s},
		RegionalPerformance{store: s},
		TopProducts{store: s},
		MonthlyTrend{store: s},
		YoYComparison{store: s},
		CategoryShare{store: s},
	}
}

// CategoryPerformance reports total revenue, units sold, and average order
// value for one category across the stored window (R3.1).
type CategoryPerformance struct {
	store *Store
}

func (CategoryPerformance) Name() string { return "category_performance" }

func (CategoryPerformance) Spec() tool.Spec {
	return tool.Spec{
		Summary:          "Revenue, units sold, and average order value for a category",
		AcceptsCategory:  true,
		RequiresCategory: true,
		Fields: []string{
			"category", "total_revenue", "total_units",
			"avg_order_value", "earliest_date", "latest_date",
		},
	}
}

func (t CategoryPerformance) Invoke(ctx context.Context, args tool.Args) tool.Result {
	rows, err := t.store.db.QueryContext(ctx, `
		SELECT category,
		       SUM(daily_revenue) AS total_revenue,
		       SUM(daily_quantity) AS total_units,
		       ROUND(AVG(daily_revenue / NULLIF(daily_quantity, 0)), 2) AS avg_order_value,
		       MIN(sale_date) AS earliest_date,
		       MAX(sale_date) AS latest_date
		FROM fct_daily_sales
		WHERE category = ?
		GROUP BY category`,
		args.Category,
	)
	if err != nil {
		return tool.Errorf("querying category performance: %v", err)
	}
	defer rows.Close()

	var records []tool.Record
	for rows.Next() {
		var (
			category, earliest, latest string
			revenue                    float64
			units                      int64
			aov                        sql.NullFloat64
		)
		if err := rows.Scan(&category, &revenue, &units, &aov, &earliest, &latest); err != nil {
			return tool.Errorf("scanning category performance: %v", err)
		}
		records = append(records, tool.Record{
			"category":        category,
			"total_revenue":   revenue,
			"total_units":     units,
			"avg_order_value": nullable(aov),
			"earliest_date":   earliest,
			"latest_date":     latest,
		})
	}
	if err := rows.Err(); err != nil {
		return tool.Errorf("reading category performance: %v", err)
	}
	if len(records) == 0 {
		return tool.NoData("No data found for category: " + args.Category)
	}
	return tool.Success(records)
}

// RegionalPerformance breaks one category's performance down by region,
// strongest region first (R3.2).
type RegionalPerformance struct {
	store *Store
}

func (RegionalPerformance) Name() string { return "regional_performance" }

func (RegionalPerformance) Spec() tool.Spec {
	return tool.Spec{
		Summary:          "Per-region performance breakdown for a category",
		AcceptsCategory:  true,
		RequiresCategory: true,
		Fields:           []string{"region", "total_revenue", "total_units", "avg_order_value"},
	}
}

func (t RegionalPerformance) Invoke(ctx context.Context, args tool.Args) tool.Result {
	rows, err := t.store.db.QueryContext(ctx, `
		SELECT region,
		       SUM(daily_revenue) AS total_revenue,
		       SUM(daily_quantity) AS total_units,
		       ROUND(AVG(daily_revenue / NULLIF(daily_quantity, 0)), 2) AS avg_order_value
		FROM fct_daily_sales
		WHERE category = ?
		GROUP BY region
		ORDER BY total_revenue DESC, region ASC`,
		args.Category,
	)
	if err != nil {
		return tool.Errorf("querying regional performance: %v", err)
	}
	defer rows.Close()

	var records []tool.Record
	for rows.Next() {
		var (
			region  string
			revenue float64
			units   int64
			aov     sql.NullFloat64
		)
		if err := rows.Scan(&region, &revenue, &units, &aov); err != nil {
			return tool.Errorf("scanning regional performance: %v", err)
		}
		records = append(records, tool.Record{
			"region":          region,
			"total_revenue":   revenue,
			"total_units":     units,
			"avg_order_value": nullable(aov),
		})
	}
	if err := rows.Err(); err != nil {
		return tool.Errorf("reading regional performance: %v", err)
	}
	if len(records) == 0 {
		return tool.NoData("No regional data for category: " + args.Category)
	}
	return tool.Success(records)
}

// TopProducts ranks a category's products by total revenue (R3.3). Ties
// break on product name so identical datasets always rank identically.
type TopProducts struct {
	store *Store
}

func (TopProducts) Name() string { return "top_products" }

func (TopProducts) Spec() tool.Spec {
	return tool.Spec{
		Summary:          "Top-selling products in a category by revenue",
		AcceptsCategory:  true,
		RequiresCategory: true,
		AcceptsLimit:     true,
		DefaultLimit:     10,
		Fields:           []string{"product_name", "total_revenue", "total_units"},
	}
}

func (t TopProducts) Invoke(ctx context.Context, args tool.Args) tool.Result {
	rows, err := t.store.db.QueryContext(ctx, `
		SELECT product_name,
		       SUM(daily_revenue) AS total_revenue,
		       SUM(daily_quantity) AS total_units
		FROM fct_daily_sales
		WHERE category = ?
		GROUP BY product_name
		ORDER BY total_revenue DESC, product_name ASC
		LIMIT ?`,
		args.Category, args.Limit,
	)
	if err != nil {
		return tool.Errorf("querying top products: %v", err)
	}
	defer rows.Close()

	var records []tool.Record
	for rows.Next() {
		var (
			product string
			revenue float64
			units   int64
		)
		if err := rows.Scan(&product, &revenue, &units); err != nil {
			return tool.Errorf("scanning top products: %v", err)
		}
		records = append(records, tool.Record{
			"product_name":  product,
			"total_revenue": revenue,
			"total_units":   units,
		})
	}
	if err := rows.Err(); err != nil {
		return tool.Errorf("reading top products: %v", err)
	}
	if len(records) == 0 {
		return tool.NoData("No products found for category: " + args.Category)
	}
	return tool.Success(records)
}

// nullable converts a NULL-able scan result to a record value, keeping
// NULL as nil rather than a zero that looks like data.
func nullable(v sql.NullFloat64) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}
