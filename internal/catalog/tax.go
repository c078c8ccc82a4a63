package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	"github.com/angelmondragon/gaspos-terminal/pkg/enums"
)

// flexID accepts ids sent either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type taxRecord struct {
	ProductID flexID          `json:"product_id"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	TaxType   string          `json:"tax_type"`
	TaxName   string          `json:"tax_name"`
}

// decodeTaxTable reads the /tax body, either a bare array or wrapped in "data".
// Records without a product or with an unknown tax type are skipped.
func decodeTaxTable(body []byte) (cart.TaxTable, error) {
	records, err := decodeList[taxRecord](body)
	if err != nil {
		return nil, err
	}
	table := make(cart.TaxTable, len(records))
	for _, rec := range records {
		if rec.ProductID == "" {
			continue
		}
		taxType, err := enums.ParseTaxType(rec.TaxType)
		if err != nil {
			continue
		}
		table[string(rec.ProductID)] = cart.TaxRule{
			ProductID: string(rec.ProductID),
			Rate:      rec.TaxRate,
			Type:      taxType,
			Name:      rec.TaxName,
		}
	}
	return table, nil
}

func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var envelope struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
