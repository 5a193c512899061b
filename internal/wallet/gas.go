package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// GasConfig is either a GasPreset or a CustomGas.
type GasConfig interface {
	isGas()
}

// GasPreset picks one of the wallet's fee levels. Presets only apply to
// EIP-1559 transactions.
type GasPreset string

const (
	GasLow        GasPreset = "low"
	GasMarket     GasPreset = "market"
	GasAggressive GasPreset = "aggressive"
	GasSite       GasPreset = "site"
)

func (GasPreset) isGas() {}

// CustomGas sets explicit values. GasPrice applies to legacy transactions,
// BaseFee and PriorityFee to EIP-1559 ones. Zero values are left alone.
type CustomGas struct {
	GasLimit    uint64
	GasPrice    decimal.Decimal
	BaseFee     decimal.Decimal
	PriorityFee decimal.Decimal
}

func (CustomGas) isGas() {}

// ParseGas parses a preset name or a comma separated list of
// limit=, price=, base= and priority= values in gwei.
func ParseGas(s string) (GasConfig, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch GasPreset(s) {
	case "":
		return nil, nil
	case GasLow, GasMarket, GasAggressive, GasSite:
		return GasPreset(s), nil
	}

	var g CustomGas
	for _, part := range strings.Split(s, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("invalid gas setting %q", part)
		}
		if key == "limit" {
			n, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid gas limit %q: %w", val, err)
			}
			g.GasLimit = n
			continue
		}
		d, err := decimal.NewFromString(val)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", key, val, err)
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("negative %s %q", key, val)
		}
		switch key {
		case "price":
			g.GasPrice = d
		case "base":
			g.BaseFee = d
		case "priority":
			g.PriorityFee = d
		default:
			return nil, fmt.Errorf("unknown gas setting %q", key)
		}
	}
	return g, nil
}
