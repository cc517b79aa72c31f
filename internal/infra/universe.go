package infra

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// SecurityInfo is one row of the universe CSV: ticker metadata, a
// short price history (oldest first), and the current price used to
// seed the matching engine.
type SecurityInfo struct {
	Ticker  string
	Name    string
	Sector  string
	History []float64
	Price   float64
}

// historyColumns lists the CSV price-history columns, oldest first.
var historyColumns = []string{"price_5", "price_4", "price_3", "price_2", "price_1"}

// LoadUniverse reads a securities CSV with a header row of
// ticker,name,sector,price_5..price_1,current_price.
func LoadUniverse(path string) ([]SecurityInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range append([]string{"ticker", "current_price"}, historyColumns...) {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("universe CSV missing column %q", required)
		}
	}

	var universe []SecurityInfo
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		info := SecurityInfo{Ticker: record[col["ticker"]]}
		if i, ok := col["name"]; ok {
			info.Name = record[i]
		}
		if i, ok := col["sector"]; ok {
			info.Sector = record[i]
		}
		for _, h := range historyColumns {
			price, err := strconv.ParseFloat(record[col[h]], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %s: %w", line, h, err)
			}
			info.History = append(info.History, price)
		}
		price, err := strconv.ParseFloat(record[col["current_price"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad current_price: %w", line, err)
		}
		if price <= 0 {
			return nil, fmt.Errorf("line %d: current_price must be positive", line)
		}
		info.Price = price

		universe = append(universe, info)
	}
	return universe, nil
}
