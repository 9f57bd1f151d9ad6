package export

import (
	"strconv"
	"strings"
)

// FormatBRL renders an amount in centavos the way pt-BR displays reais, e.g. "R$ 1.234,56".
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	whole := strconv.FormatInt(cents/100, 10)
	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	frac := cents % 100
	return sign + "R$ " + grouped.String() + "," + strconv.FormatInt(frac/10, 10) + strconv.FormatInt(frac%10, 10)
}
