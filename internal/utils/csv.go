package utils

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"tradeSync/internal/domain"
)

var tradeCSVHeader = []string{
	"id", "status", "underlying_symbol", "trading_symbol", "strike_price", "option_type",
	"expiry_date", "transaction_type", "order_type", "quantity", "lot_size", "total_quantity",
	"initiated_at", "last_processed_at", "exited_at", "remarks",
}

// WriteTradesToCSV writes trades to filename, creating or truncating it.
func WriteTradesToCSV(trades []domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteTradesCSV(file, trades); err != nil {
		return err
	}
	return file.Sync()
}

// WriteTradesCSV writes a header row and one row per trade. Absent values are empty cells.
func WriteTradesCSV(w io.Writer, trades []domain.Trade) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(tradeCSVHeader); err != nil {
		return err
	}
	for _, t := range trades {
		if err := writer.Write([]string{
			t.ID,
			string(t.Status),
			t.UnderlyingSymbol,
			t.TradingSymbol,
			floatPtr(t.StrikePrice),
			stringPtr(t.OptionType),
			timePtr(t.ExpiryDate),
			stringPtr(t.TransactionType),
			stringPtr(t.OrderType),
			strconv.FormatFloat(t.Quantity, 'f', -1, 64),
			floatPtr(t.LotSize),
			strconv.FormatFloat(t.TotalQuantity, 'f', -1, 64),
			timePtr(t.InitiatedAt),
			timePtr(t.LastProcessedAt),
			timePtr(t.ExitedAt),
			stringPtr(t.Remarks),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func floatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func timePtr(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func stringPtr[T ~string](v *T) string {
	if v == nil {
		return ""
	}
	return string(*v)
}
