package fetcher

import (
	"time"

	"StockScan/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	FetchDailyBars(ticker string, days int) (model.PriceSeries, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	BasePrice float64
	Bars      map[string]model.PriceSeries
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ticker string, days int) (model.PriceSeries, error) {
	if bars, ok := m.Bars[ticker]; ok {
		return bars, nil
	}
	base := m.BasePrice
	if base == 0 {
		base = 1000
	}
	return GenerateMockBars(base, days), nil
}

// GenerateMockBars builds a deterministic gently trending series.
func GenerateMockBars(basePrice float64, count int) model.PriceSeries {
	bars := make(model.PriceSeries, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Date:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
