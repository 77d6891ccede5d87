package repositories

import (
	"fmt"
	"sort"

	"urbantales/internal/models"

	"github.com/shopspring/decimal"
)

type monthlyItem struct {
	year  int
	month int
	price float64
	qty   int
}

type monthKey struct {
	year  int
	month int
}

// groupMonthly sums price*qty per month, oldest month first.
func groupMonthly(items []monthlyItem) []models.MonthlyEarning {
	sums := make(map[monthKey]decimal.Decimal)
	for _, it := range items {
		k := monthKey{year: it.year, month: it.month}
		line := decimal.NewFromFloat(it.price).Mul(decimal.NewFromInt(int64(it.qty)))
		sums[k] = sums[k].Add(line)
	}

	keys := make([]monthKey, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]models.MonthlyEarning, 0, len(keys))
	for _, k := range keys {
		out = append(out, newMonthlyEarning(k.year, k.month, sums[k].InexactFloat64()))
	}
	return out
}

func newMonthlyEarning(year, month int, earnings float64) models.MonthlyEarning {
	return models.MonthlyEarning{
		Month:    fmt.Sprintf("%d-%d", month, year),
		Year:     year,
		MonthNum: month,
		Earnings: earnings,
	}
}
