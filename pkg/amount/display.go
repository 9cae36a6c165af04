package amount

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatGrouped is Format with thousands separators on the whole part,
// for display only ("1,234,567.89").
func FormatGrouped(a Atomic, decimals uint8) string {
	s := Format(a, decimals)
	whole, frac, hasFrac := strings.Cut(s, ".")
	n, _ := new(big.Int).SetString(whole, 10)
	grouped := humanize.BigComma(n)
	if hasFrac {
		return grouped + "." + frac
	}
	return grouped
}

// Percent returns part/whole as a percentage rounded to places decimal
// places. It is a preview value for the UI; whole == 0 yields "0".
func Percent(part, whole Atomic, places int32) string {
	if whole == 0 {
		return "0"
	}
	p := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(part)), 0)
	w := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(whole)), 0)
	return p.Mul(decimal.New(100, 0)).DivRound(w, places).String()
}
