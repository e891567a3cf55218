// Package normalize converts loosely shaped trade-list payloads into canonical
// domain.Trade records.
//
// Supported envelopes, checked in this order:
//
//	{"data": {"trades": [...]}}
//	{"data": [...]}
//	{"trades": [...]}
//	[...]
//
// Anything else yields an empty list. Normalization never fails.
package normalize

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"

	"tradeSync/internal/domain"
)

// Field precedence lists. The first key present with a non-null value wins.
var (
	idKeys              = []string{"id", "_id", "trade_id", "tradeId"}
	underlyingKeys      = []string{"underlying_symbol", "underlyingSymbol", "underlying", "symbol"}
	tradingSymbolKeys   = []string{"trading_symbol", "tradingSymbol", "tradingsymbol"}
	strikeKeys          = []string{"strike_price", "strikePrice", "strike"}
	optionTypeKeys      = []string{"option_type", "optionType"}
	expiryKeys          = []string{"expiry_date", "expiryDate", "expiry"}
	transactionKeys     = []string{"transaction_type", "transactionType", "side"}
	orderTypeKeys       = []string{"order_type", "orderType"}
	quantityKeys        = []string{"quantity", "qty"}
	lotSizeKeys         = []string{"lot_size", "lotSize"}
	totalQuantityKeys   = []string{"total_quantity", "totalQuantity"}
	statusKeys          = []string{"status"}
	initiatedAtKeys     = []string{"initiated_at", "initiatedAt", "created_at", "createdAt"}
	lastProcessedAtKeys = []string{"last_processed_at", "lastProcessedAt", "updated_at", "updatedAt"}
	exitedAtKeys        = []string{"exited_at", "exitedAt"}
	remarksKeys         = []string{"remarks", "remark"}
)

// NormalizeJSON decodes body and normalizes it. Undecodable bodies yield an empty list.
func NormalizeJSON(body []byte) []domain.Trade {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []domain.Trade{}
	}
	// Numbers stay json.Number so large numeric ids keep every digit.
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return []domain.Trade{}
	}
	return Normalize(raw)
}

// Normalize accepts a decoded payload (maps/slices as produced by a JSON decoder),
// raw JSON bytes or a JSON string, and returns trades in payload order.
// Records without a resolvable id are dropped.
func Normalize(raw any) []domain.Trade {
	switch v := raw.(type) {
	case []byte:
		return NormalizeJSON(v)
	case json.RawMessage:
		return NormalizeJSON(v)
	case string:
		return NormalizeJSON([]byte(v))
	}

	records := resolveRecords(raw)
	trades := make([]domain.Trade, 0, len(records))
	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		trade, ok := normalizeRecord(obj)
		if !ok {
			continue
		}
		trades = append(trades, trade)
	}
	return trades
}

func resolveRecords(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case map[string]any:
		if data, ok := v["data"].(map[string]any); ok {
			if list, ok := data["trades"].([]any); ok {
				return list
			}
		}
		if list, ok := v["data"].([]any); ok {
			return list
		}
		if list, ok := v["trades"].([]any); ok {
			return list
		}
	}
	return nil
}

func normalizeRecord(obj map[string]any) (domain.Trade, bool) {
	id := firstString(obj, idKeys)
	if id == "" {
		return domain.Trade{}, false
	}

	t := domain.Trade{
		ID:               id,
		UnderlyingSymbol: firstString(obj, underlyingKeys),
		TradingSymbol:    firstString(obj, tradingSymbolKeys),
		StrikePrice:      firstFloatPtr(obj, strikeKeys),
		ExpiryDate:       firstTime(obj, expiryKeys),
		Quantity:         firstFloat(obj, quantityKeys),
		LotSize:          firstFloatPtr(obj, lotSizeKeys),
		Status:           domain.ParseTradeStatus(upper(firstString(obj, statusKeys))),
		InitiatedAt:      firstTime(obj, initiatedAtKeys),
		LastProcessedAt:  firstTime(obj, lastProcessedAtKeys),
		ExitedAt:         firstTime(obj, exitedAtKeys),
	}

	switch upper(firstString(obj, optionTypeKeys)) {
	case "CE", "CALL":
		v := domain.OptionCall
		t.OptionType = &v
	case "PE", "PUT":
		v := domain.OptionPut
		t.OptionType = &v
	}

	switch upper(firstString(obj, transactionKeys)) {
	case string(domain.TransactionBuy):
		v := domain.TransactionBuy
		t.TransactionType = &v
	case string(domain.TransactionSell):
		v := domain.TransactionSell
		t.TransactionType = &v
	}

	switch upper(firstString(obj, orderTypeKeys)) {
	case string(domain.OrderMarket):
		v := domain.OrderMarket
		t.OrderType = &v
	case string(domain.OrderLimit):
		v := domain.OrderLimit
		t.OrderType = &v
	}

	if _, ok := first(obj, totalQuantityKeys); ok {
		t.TotalQuantity = firstFloat(obj, totalQuantityKeys)
	} else if t.LotSize != nil {
		t.TotalQuantity = t.Quantity * *t.LotSize
	} else {
		t.TotalQuantity = t.Quantity
	}

	if s, ok := first(obj, remarksKeys); ok {
		if r := strings.TrimSpace(scalarString(s)); r != "" {
			t.Remarks = &r
		}
	}

	return t, true
}

// first returns the value of the first key present with a non-null value.
func first(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstString(obj map[string]any, keys []string) string {
	v, ok := first(obj, keys)
	if !ok {
		return ""
	}
	return strings.TrimSpace(scalarString(v))
}

// scalarString renders scalars only. Whole floats are printed without exponent so
// numeric ids like 1000000 stay "1000000".
func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

func firstFloat(obj map[string]any, keys []string) float64 {
	if p := firstFloatPtr(obj, keys); p != nil {
		return *p
	}
	return 0
}

func firstFloatPtr(obj map[string]any, keys []string) *float64 {
	v, ok := first(obj, keys)
	if !ok {
		return nil
	}
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
		if v == "" {
			return nil
		}
	}
	if _, isBool := v.(bool); isBool {
		return nil
	}
	if n, isNumber := v.(json.Number); isNumber {
		v = n.String()
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return &f
}

func firstTime(obj map[string]any, keys []string) *time.Time {
	v, ok := first(obj, keys)
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		v = strings.TrimSpace(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil
		}
		return epoch(f)
	case float64:
		return epoch(x)
	case bool, map[string]any, []any:
		return nil
	}
	ts, err := cast.ToTimeE(v)
	if err != nil || ts.IsZero() {
		return nil
	}
	ts = ts.UTC()
	return &ts
}

// epoch reads values above 1e12 as milliseconds, anything else as seconds.
func epoch(v float64) *time.Time {
	if v > 1e12 {
		ts := time.UnixMilli(int64(v)).UTC()
		return &ts
	}
	ts := time.Unix(int64(v), 0).UTC()
	return &ts
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
