package order

import (
	"strconv"
	"strings"
	"time"
)

// NumberPrefix is the store-wide prefix of every order number.
const NumberPrefix = "KIRA"

// Channel suffixes distinguish how an order number was minted.
const (
	suffixTransfer = "TF"
	suffixGateway  = "MP"
)

// NewNumber derives a human-readable order number from the given instant:
// KIRA-<base36 millis, upper>-<channel suffix>. Uniqueness relies on
// millisecond granularity; two calls within the same millisecond can collide.
func NewNumber(t time.Time, method PaymentMethod) string {
	encoded := strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36))

	suffix := suffixGateway
	if method == MethodTransfer {
		suffix = suffixTransfer
	}

	return NumberPrefix + "-" + encoded + "-" + suffix
}
