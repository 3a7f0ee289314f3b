// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package seed generates the synthetic daily sales dataset the retail tools
// query. Output is fully deterministic for a given seed and date range:
// product weights come from a stable FNV-1a hash and noise from a seeded
// generator, so repeated runs produce byte-identical datasets.
// Implements: prd008-seed-data (R1-R4);
//
//	docs/ARCHITECTURE § Seed Data.
package seed

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// Row is one fact-table record: revenue and quantity for one product in one
// region on one day.
type Row struct {
	SaleDate time.Time
	Region   string
	Category string
	Product  string
	Revenue  float64
	Quantity int
}

// Config controls the generated window. Zero values fall back to the
// defaults below.
type Config struct {
	From time.Time
	To   time.Time
	Seed int64
}

// DefaultSeed keeps repeated generations identical unless overridden.
const DefaultSeed = 42

// growthEpoch anchors the category growth curves. It stays fixed even when
// a narrower window is generated, so a late window carries the revenue
// levels that much elapsed growth implies.
var growthEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultFrom and DefaultTo bound the standard five-year dataset.
var (
	DefaultFrom = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	DefaultTo   = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
)

type seasonality int

const (
	seasonHoliday seasonality = iota
	seasonSummer
	seasonBimodal
)

type categoryConfig struct {
	name         string
	baseRevenue  float64
	annualGrowth float64
	season       seasonality
	products     []string
	minPrice     float64
	maxPrice     float64
}

// categories is ordered; generation iterates it in this order so the noise
// stream lines up identically run to run.
var categories = []categoryConfig{
	{
		name:         "Electronics",
		baseRevenue:  800,
		annualGrowth: 0.08,
		season:       seasonHoliday,
		products: []string{
			"Wireless Headphones", "Bluetooth Speaker", "USB-C Hub", "Portable Charger",
			"Mechanical Keyboard", "Gaming Mouse", "Webcam HD", "Smart Watch",
			"Tablet Stand", "LED Monitor",
		},
		minPrice: 25, maxPrice: 350,
	},
	{
		name:         "Clothing",
		baseRevenue:  600,
		annualGrowth: 0.03,
		season:       seasonBimodal,
		products: []string{
			"Cotton T-Shirt", "Denim Jeans", "Running Shoes", "Winter Jacket",
			"Polo Shirt", "Yoga Pants", "Rain Jacket", "Casual Sneakers",
			"Wool Sweater", "Athletic Shorts",
		},
		minPrice: 20, maxPrice: 150,
	},
	{
		name:         "Home and Garden",
		baseRevenue:  500,
		annualGrowth: 0.12,
		season:       seasonSummer,
		products: []string{
			"Garden Hose", "LED Bulb Pack", "Throw Pillow Set", "Plant Pot Ceramic",
			"Tool Set Basic", "Outdoor Chair", "Welcome Mat", "Kitchen Organizer",
			"Wall Shelf", "Candle Set",
		},
		minPrice: 15, maxPrice: 200,
	},
	{
		name:         "Sports",
		baseRevenue:  400,
		annualGrowth: 0.05,
		season:       seasonSummer,
		products: []string{
			"Yoga Mat", "Resistance Bands", "Water Bottle Steel", "Jump Rope",
			"Foam Roller", "Dumbbell Set", "Sports Bag", "Fitness Tracker Band",
			"Tennis Balls Pack", "Running Belt",
		},
		minPrice: 10, maxPrice: 120,
	},
	{
		name:         "Grocery",
		baseRevenue:  900,
		annualGrowth: 0.02,
		season:       seasonHoliday,
		products: []string{
			"Organic Coffee Beans", "Protein Bars Box", "Olive Oil Premium",
			"Mixed Nuts Bag", "Green Tea Pack", "Dark Chocolate Bar",
			"Granola Cereal", "Coconut Water Case", "Honey Jar Raw",
			"Trail Mix Variety",
		},
		minPrice: 5, maxPrice: 45,
	},
}

var regions = []string{"Northeast", "Southeast", "Midwest", "West", "Southwest"}

// regionWeights captures which regions are strong in which category.
var regionWeights = map[string]map[string]float64{
	"Northeast": {"Electronics": 1.3, "Clothing": 1.2, "Home and Garden": 0.9, "Sports": 0.8, "Grocery": 1.0},
	"Southeast": {"Electronics": 0.9, "Clothing": 1.0, "Home and Garden": 1.3, "Sports": 1.1, "Grocery": 1.2},
	"Midwest":   {"Electronics": 0.8, "Clothing": 0.9, "Home and Garden": 1.1, "Sports": 1.3, "Grocery": 1.1},
	"West":      {"Electronics": 1.4, "Clothing": 1.3, "Home and Garden": 1.0, "Sports": 1.2, "Grocery": 0.9},
	"Southwest": {"Electronics": 1.0, "Clothing": 0.8, "Home and Garden": 1.2, "Sports": 1.0, "Grocery": 1.1},
}

// Regions returns the region names in generation order.
func Regions() []string {
	out := make([]string, len(regions))
	copy(out, regions)
	return out
}

// Categories returns the category names in generation order.
func Categories() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.name
	}
	return out
}

// Products returns the product names for a category, or nil for an unknown
// category.
func Products(category string) []string {
	for _, c := range categories {
		if c.name == category {
			out := make([]string, len(c.products))
			copy(out, c.products)
			return out
		}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.From.IsZero() {
		c.From = DefaultFrom
	}
	if c.To.IsZero() {
		c.To = DefaultTo
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	return c
}

// Generate emits one Row per (day, category, region, product) combination
// in the configured window, in a fixed nesting order, calling emit for
// each. Generation stops at the first emit error.
func Generate(cfg Config, emit func(Row) error) (int, error) {
	cfg = cfg.withDefaults()
	if cfg.To.Before(cfg.From) {
		return 0, fmt.Errorf("window end %s precedes start %s",
			cfg.To.Format("2006-01-02"), cfg.From.Format("2006-01-02"))
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	count := 0
	from := cfg.From.Truncate(24 * time.Hour)
	to := cfg.To.Truncate(24 * time.Hour)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		yearsElapsed := day.Sub(growthEpoch).Hours() / 24 / 365.25

		weekendFactor := 1.0
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekendFactor = 1.15
		}

		for _, cat := range categories {
			growthFactor := math.Pow(1+cat.annualGrowth, yearsElapsed)
			seasonalFactor := seasonFactor(day.Month(), cat.season)
			base := cat.baseRevenue / float64(len(cat.products))

			for _, region := range regions {
				regionWeight := regionWeights[region][cat.name]

				for _, product := range cat.products {
					weight := productWeight(product)

					revenue := base * growthFactor * seasonalFactor *
						weekendFactor * regionWeight * weight
					noise := 1.0 + 0.2*rng.NormFloat64()
					revenue = math.Max(revenue*noise, 1.0)
					revenue = math.Round(revenue*100) / 100

					avgPrice := (cat.minPrice + cat.maxPrice) / 2
					// Pricier products in a category sell fewer units.
					effectivePrice := avgPrice * (0.5 + weight*0.5)
					quantity := int(revenue / effectivePrice)
					if quantity < 1 {
						quantity = 1
					}

					if err := emit(Row{
						SaleDate: day,
						Region:   region,
						Category: cat.name,
						Product:  product,
						Revenue:  revenue,
						Quantity: quantity,
					}); err != nil {
						return count, err
					}
					count++
				}
			}
		}
	}
	return count, nil
}

// productWeight maps a product name to a stable weight in [0.5, 1.5).
// FNV-1a keeps the weight identical across runs and platforms.
func productWeight(product string) float64 {
	h := fnv.New32a()
	h.Write([]byte(product))
	return 0.5 + float64(h.Sum32()%100)/100
}

func seasonFactor(month time.Month, kind seasonality) float64 {
	switch kind {
	case seasonHoliday:
		switch month {
		case time.November:
			return 1.5
		case time.December:
			return 1.8
		case time.January, time.February:
			return 0.7
		case time.June, time.July:
			return 0.9
		default:
			return 1.0
		}
	case seasonSummer:
		switch month {
		case time.May, time.June, time.July, time.August:
			return 1.4
		case time.December, time.January, time.February:
			return 0.6
		case time.March, time.April, time.September:
			return 1.1
		default:
			return 0.9
		}
	case seasonBimodal:
		switch month {
		case time.March, time.April:
			return 1.3
		case time.September, time.October:
			return 1.4
		case time.January, time.February, time.July, time.August:
			return 0.8
		default:
			return 1.0
		}
	}
	return 1.0
}
