package tmplfuncs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

const (
	defaultDecPoint     = ","
	defaultThousandsSep = " "
)

// ToFloat formats a number with grouped thousands. The number comes last;
// the optional leading arguments are decimals (default 0), decimal point
// (default ",") and thousands separator (default " ").
func ToFloat(args ...any) (string, error) {
	if len(args) == 0 || len(args) > 4 {
		return "", fmt.Errorf("to_float: expected 1 to 4 arguments, got %d", len(args))
	}

	number, err := toNumber(args[len(args)-1])
	if err != nil {
		return "", fmt.Errorf("to_float: %w", err)
	}
	opts := args[:len(args)-1]

	decimals := 0
	decPoint, thousandsSep := defaultDecPoint, defaultThousandsSep
	if len(opts) > 0 {
		if decimals, err = cast.ToIntE(opts[0]); err != nil || decimals < 0 {
			return "", fmt.Errorf("to_float: invalid decimals %v", opts[0])
		}
	}
	if len(opts) > 1 {
		decPoint = cast.ToString(opts[1])
	}
	if len(opts) > 2 {
		thousandsSep = cast.ToString(opts[2])
	}

	return NumberFormat(number, decimals, decPoint, thousandsSep), nil
}

// NumberFormat rounds half away from zero to decimals places.
func NumberFormat(number float64, decimals int, decPoint, thousandsSep string) string {
	pow := math.Pow10(decimals)
	rounded := math.Round(number*pow) / pow

	s := strconv.FormatFloat(math.Abs(rounded), 'f', decimals, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if rounded < 0 {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(thousandsSep)
		}
		b.WriteRune(r)
	}
	if decimals > 0 {
		b.WriteString(decPoint)
		b.WriteString(fracPart)
	}
	return b.String()
}
