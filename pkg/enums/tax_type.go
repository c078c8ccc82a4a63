package enums

import (
	"fmt"
	"strings"
)

// TaxType controls whether a rate is added on top of the price or already included in it.
type TaxType string

const (
	TaxTypeExclusive TaxType = "exclusive"
	TaxTypeInclusive TaxType = "inclusive"
)

func (t TaxType) String() string {
	return string(t)
}

func (t TaxType) IsValid() bool {
	return t == TaxTypeExclusive || t == TaxTypeInclusive
}

// ParseTaxType accepts the backend spelling in any case. Unknown values are rejected.
func ParseTaxType(value string) (TaxType, error) {
	switch TaxType(strings.ToLower(strings.TrimSpace(value))) {
	case TaxTypeExclusive:
		return TaxTypeExclusive, nil
	case TaxTypeInclusive:
		return TaxTypeInclusive, nil
	}
	return "", fmt.Errorf("invalid tax type %q", value)
}
