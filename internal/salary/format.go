package salary

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatUSD renders a dollar amount with thousands separators and no cents,
// e.g. 1234567.89 -> "$1,234,568".
func FormatUSD(amount decimal.Decimal) string {
	rounded := amount.Round(0)

	s := rounded.Abs().String()
	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')

	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
