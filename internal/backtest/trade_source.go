package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/breadth"
	apperrors "github.com/quangminh-dev/dynamic-sizing-backtest/internal/errors"
	"github.com/quangminh-dev/dynamic-sizing-backtest/pkg/types"
)

// Expected column headers in the trade CSV produced by the external
// trade-simulation engine.
const (
	colEntryDate     = "entry_date"
	colTicker        = "ticker"
	colShares        = "shares"
	colPnL           = "pnl"
	colPnLRate       = "pnl_rate"
	colHoldingPeriod = "holding_period"
)

// LoadTrades reads the trade collaborator's CSV output. Unlike market
// data lookups, trades are contract input: any malformed row is a
// fatal DATA_LOAD error rather than a skip. The result is sorted
// ascending by entry date, the order required by stateful sizing.
func LoadTrades(csvPath string) ([]types.TradeRecord, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, apperrors.NewDataLoadError("trades", "load", err).
			WithContext("path", csvPath)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewDataLoadError("trades", "read_header", err).
			WithContext("path", csvPath)
	}

	cols := make(map[string]int)
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colEntryDate, colTicker, colShares, colPnL, colPnLRate, colHoldingPeriod} {
		if _, ok := cols[required]; !ok {
			return nil, apperrors.NewDataLoadErrorf("trades", "read_header",
				"required column %q missing from %v", required, header)
		}
	}

	var trades []types.TradeRecord
	lineNum := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, apperrors.NewDataLoadError("trades", "read_row", err).
				WithContext("line", lineNum)
		}
		lineNum++

		trade, err := parseTradeRow(row, cols)
		if err != nil {
			return nil, apperrors.NewDataLoadErrorf("trades", "parse_row",
				"line %d: %v", lineNum, err)
		}
		trades = append(trades, trade)
	}

	if len(trades) == 0 {
		return nil, apperrors.NewDataLoadErrorf("trades", "load",
			"no trades found in %s", csvPath)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].EntryDate.Before(trades[j].EntryDate)
	})

	return trades, nil
}

func parseTradeRow(row []string, cols map[string]int) (types.TradeRecord, error) {
	get := func(name string) string {
		idx := cols[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	entryDate, err := parseTradeDate(get(colEntryDate))
	if err != nil {
		return types.TradeRecord{}, fmt.Errorf("invalid %s %q: %w", colEntryDate, get(colEntryDate), err)
	}

	shares, err := strconv.ParseFloat(get(colShares), 64)
	if err != nil {
		return types.TradeRecord{}, fmt.Errorf("invalid %s %q: %w", colShares, get(colShares), err)
	}

	pnl, err := strconv.ParseFloat(get(colPnL), 64)
	if err != nil {
		return types.TradeRecord{}, fmt.Errorf("invalid %s %q: %w", colPnL, get(colPnL), err)
	}

	pnlRate, err := strconv.ParseFloat(get(colPnLRate), 64)
	if err != nil {
		return types.TradeRecord{}, fmt.Errorf("invalid %s %q: %w", colPnLRate, get(colPnLRate), err)
	}

	holdingPeriod, err := strconv.Atoi(get(colHoldingPeriod))
	if err != nil {
		return types.TradeRecord{}, fmt.Errorf("invalid %s %q: %w", colHoldingPeriod, get(colHoldingPeriod), err)
	}

	ticker := get(colTicker)
	if ticker == "" {
		return types.TradeRecord{}, fmt.Errorf("empty ticker")
	}

	return types.TradeRecord{
		EntryDate:     entryDate,
		Ticker:        ticker,
		Shares:        shares,
		PnL:           pnl,
		PnLRate:       pnlRate,
		HoldingPeriod: holdingPeriod,
	}, nil
}

func parseTradeDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", "2006/01/02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return breadth.NormalizeDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
