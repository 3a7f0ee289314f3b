// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retail

import (
	"context"
	"database/sql"

	"github.com/pdiddy/insight-engine/internal/tool"
)

// MonthlyTrend returns per-month revenue for a category, most recent month
// first, bounded by the months argument (R4.1).
type MonthlyTrend struct {
	store *Store
}

func (MonthlyTrend) Name() string { return "monthly_trend" }

func (MonthlyTrend) Spec() tool.Spec {
	return tool.Spec{
		Summary:          "Month-over-month revenue trend for a category",
		AcceptsCategory:  true,
		RequiresCategory: true,
		AcceptsMonths:    true,
		DefaultMonths:    12,
		Fields:           []string{"month", "monthly_revenue", "monthly_units"},
	}
}

func (t MonthlyTrend) Invoke(ctx context.Context, args tool.Args) tool.Result {
	rows, err := t.store.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', sale_date) AS month,
		       SUM(daily_revenue) AS monthly_revenue,
		       SUM(daily_quantity) AS monthly_units
		FROM fct_daily_sales
		WHERE category = ?
		GROUP BY month
		ORDER BY month DESC
		LIMIT ?`,
		args.Category, args.Months,
	)
	if err != nil {
		return tool.Errorf("querying monthly trend: %v", err)
	}
	defer rows.Close()

	var records []tool.Record
	for rows.Next() {
		var (
			month   string
			revenue float64
			units   int64
		)
		if err := rows.Scan(&month, &revenue, &units); err != nil {
			return tool.Errorf("scanning monthly trend: %v", err)
		}
		records = append(records, tool.Record{
			"month":           month,
			"monthly_revenue": revenue,
			"monthly_units":   units,
		})
	}
	if err := rows.Err(); err != nil {
		return tool.Errorf("reading monthly trend: %v", err)
	}
	if len(records) == 0 {
		return tool.NoData("No trend data for category: " + args.Category)
	}
	return tool.Success(records)
}

// YoYComparison returns annual revenue per year with the growth rate over
// the prior year (R4.2). The first year has no prior, so its growth is
// null.
type YoYComparison struct {
	store *Store
}

func (YoYComparison) Name() string { return "yoy_comparison" }

func (YoYComparison) Spec() tool.Spec {
	return tool.Spec{
		Summary:          "Year-over-year revenue with growth rates for a category",
		AcceptsCategory:  true,
		RequiresCategory: true,
		Fields:           []string{"year", "annual_revenue", "annual_units", "yoy_growth_pct"},
	}
}

func (t YoYComparison) Invoke(ctx context.Context, args tool.Args) tool.Result {
	rows, err := t.store.db.QueryContext(ctx, `
		WITH yearly AS (
			SELECT CAST(strftime('%Y', sale_date) AS INTEGER) AS year,
			       SUM(daily_revenue) AS annual_revenue,
			       SUM(daily_quantity) AS annual_units
			FROM fct_daily_sales
			WHERE category = ?
			GROUP BY year
		)
		SELECT year,
		       annual_revenue,
		       annual_units,
		       ROUND(
		           (annual_revenue - LAG(annual_revenue) OVER (ORDER BY year))
		           / NULLIF(LAG(annual_revenue) OVER (ORDER BY year), 0) * 100,
		           2
		       ) AS yoy_growth_pct
		FROM yearly
		ORDER BY year`,
		args.Category,
	)
	if err != nil {
		return tool.Errorf("querying year-over-year comparison: %v", err)
	}
	defer rows.Close()

	var records []tool.Record
	for rows.Next() {
		var (
			year    int64
			revenue float64
			units   int64
			growth  sql.NullFloat64
		)
		if err := rows.Scan(&year, &revenue, &units, &growth); err != nil {
			return tool.Errorf("scanning year-over-year comparison: %v", err)
		}
		records = append(records, tool.Record{
			"year":           year,
			"annual_revenue": revenue,
			"annual_units":   units,
			"yoy_growth_pct": nullable(growth),
		})
	}
	if err := rows.Err(); err != nil {
		return tool.Errorf("reading year-over-year comparison: %v", err)
	}
	if len(records) == 0 {
		return tool.NoData("No YoY data for category: " + args.Category)
	}
	return tool.Success(records)
}

// CategoryShare reports every category's revenue and share of the total,
// largest first (R4.3). It takes no arguments.
type CategoryShare struct {
	store *Store
}

func (CategoryShare) Name() string { return "category_share" }

func (CategoryShare) Spec() tool.Spec {
	return tool.Spec{
		Summary: "Revenue share across all categories",
		Fields:  []string{"category", "category_revenue", "pct_of_total"},
	}
}

func (t CategoryShare) Invoke(ctx context.Context, args tool.Args) tool.Result {
	rows, err := t.store.db.QueryContext(ctx, `
		WITH totals AS (
			SELECT category,
			       SUM(daily_revenue) AS category_revenue
			FROM fct_daily_sales
			GROUP BY category
		)
		SELECT category,
		       category_revenue,
		       ROUND(category_revenue * 100.0 / SUM(category_revenue) OVER (), 2) AS pct_of_total
		FROM totals
		ORDER BY category_revenue DESC, category ASC`,
	)
	if err != nil {
		return tool.Errorf("querying category share: %v", err)
	}
	defer rows.Close()

	var records []tool.Record
	for rows.Next() {
		var (
			category string
			revenue  float64
			pct      sql.NullFloat64
		)
		if err := rows.Scan(&category, &revenue, &pct); err != nil {
			return tool.Errorf("scanning category share: %v", err)
		}
		records = append(records, tool.Record{
			"category":         category,
			"category_revenue": revenue,
			"pct_of_total":     nullable(pct),
		})
	}
	if err := rows.Err(); err != nil {
		return tool.Errorf("reading category share: %v", err)
	}
	if len(records) == 0 {
		return tool.NoData("No category data found")
	}
	return tool.Success(records)
}
