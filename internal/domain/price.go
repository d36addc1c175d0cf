package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice extracts the numeric value of a display price such as "₹12,500".
// Every character that is not an ASCII digit is dropped and the remainder is
// parsed as a base-10 integer. Strings without digits, or with more digits
// than fit in an int64, yield 0.
func ParsePrice(price string) int64 {
	var b strings.Builder
	b.Grow(len(price))
	for i := 0; i < len(price); i++ {
		if c := price[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	if b.Len() == 0 {
		return 0
	}

	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// MulPrice returns price times quantity. Non-positive operands yield 0 and
// products beyond int64 saturate at math.MaxInt64.
func MulPrice(price int64, quantity int) int64 {
	if price <= 0 || quantity <= 0 {
		return 0
	}
	if price > math.MaxInt64/int64(quantity) {
		return math.MaxInt64
	}
	return price * int64(quantity)
}

// AddPrice returns a+b for non-negative amounts, saturating at math.MaxInt64.
func AddPrice(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
