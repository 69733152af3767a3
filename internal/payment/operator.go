package payment

import "strings"

// Mobile network operators the provider routes collections through.
const (
	OperatorMTN    = "mtn"
	OperatorZamtel = "zamtel"
	OperatorAirtel = "airtel"
)

// OperatorForPhone derives the mobile network from the subscriber number
// prefix. The number may carry a +260/260 country code or a leading zero.
// 96/76 route to MTN, 95/75 to Zamtel, anything else defaults to Airtel.
func OperatorForPhone(phone string) string {
	n := normalizePhone(phone)

	switch {
	case strings.HasPrefix(n, "96"), strings.HasPrefix(n, "76"):
		return OperatorMTN
	case strings.HasPrefix(n, "95"), strings.HasPrefix(n, "75"):
		return OperatorZamtel
	default:
		return OperatorAirtel
	}
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n := b.String()
	n = strings.TrimPrefix(n, "260")
	n = strings.TrimPrefix(n, "0")
	return n
}
