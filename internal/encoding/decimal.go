package encoding

import (
	"fmt"
	"math/big"
	"strings"
)

// Decimal literals get a fixed 16-byte payload (§3.1), unlike string-like
// literals which can fall back to a hash: the value is scaled by 10^18 and
// stored as a two's-complement 128-bit integer, preserving up to 18
// fractional digits exactly instead of truncating to a float64.
var decimalScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var twoPow128 = new(big.Int).Lsh(big.NewInt(1), 128)
var twoPow127 = new(big.Int).Lsh(big.NewInt(1), 127)

func encodeDecimal128(value string) ([16]byte, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(value))
	if !ok {
		return [16]byte{}, fmt.Errorf("invalid decimal literal: %q", value)
	}
	scaled := new(big.Int).Mul(r.Num(), decimalScale)
	scaled.Quo(scaled, r.Denom())
	return int128ToBytes(scaled), nil
}

func decodeDecimal128(b []byte) string {
	scaled := bytesToInt128(b)
	r := new(big.Rat).SetFrac(scaled, decimalScale)
	return trimDecimalString(r.FloatString(18))
}

func int128ToBytes(v *big.Int) [16]byte {
	u := v
	if v.Sign() < 0 {
		u = new(big.Int).Add(v, twoPow128)
	}
	var buf [16]byte
	raw := u.Bytes()
	copy(buf[16-len(raw):], raw)
	return buf
}

func bytesToInt128(b []byte) *big.Int {
	u := new(big.Int).SetBytes(b)
	if u.Cmp(twoPow127) >= 0 {
		u.Sub(u, twoPow128)
	}
	return u
}

// trimDecimalString trims trailing fractional zeros while keeping at
// least one digit after the decimal point, matching rdf.NewDecimalLiteral.
func trimDecimalString(s string) string {
	if !strings.Contains(s, ".") {
		return s + ".0"
	}
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
