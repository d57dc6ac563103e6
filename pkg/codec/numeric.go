package codec

import (
	"encoding/binary"
	"math/big"
	"math/bits"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/grafana/cqlwire/pkg/cql"
)

var bigOne = big.NewInt(1)

// decBigInt2C decodes a big endian two's complement integer.
func decBigInt2C(data []byte) *big.Int {
	n := new(big.Int).SetBytes(data)
	if len(data) > 0 && data[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(bigOne, uint(len(data))*8))
	}
	return n
}

// encBigInt2C returns the shortest big endian two's complement form of n.
func encBigInt2C(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		return []byte{0}
	case 1:
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	default:
		length := uint(n.BitLen()/8+1) * 8
		b := new(big.Int).Add(n, new(big.Int).Lsh(bigOne, length)).Bytes()
		// a magnitude on a byte boundary leaves a redundant sign byte
		if len(b) >= 2 && b[0] == 0xff && b[1]&0x80 != 0 {
			b = b[1:]
		}
		return b
	}
}

// encodeDecimal writes the int32 scale followed by the unscaled varint.
func encodeDecimal(d decimal.Decimal) []byte {
	buf := binary.BigEndian.AppendUint32(nil, uint32(-d.Exponent()))
	return append(buf, encBigInt2C(d.Coefficient())...)
}

func decodeDecimal(t *cql.Type, data []byte) (decimal.Decimal, error) {
	if len(data) < 5 {
		return decimal.Decimal{}, decodeErrorf(t, "expected at least 5 bytes, got %d", len(data))
	}
	scale := int32(binary.BigEndian.Uint32(data))
	return decimal.NewFromBigInt(decBigInt2C(data[4:]), -scale), nil
}

func encVints(months, days int32, nanos int64) []byte {
	buf := encVint(int64(months))
	buf = append(buf, encVint(int64(days))...)
	return append(buf, encVint(nanos)...)
}

func decVints(data []byte) (int32, int32, int64, error) {
	months, i, err := decVint(data, 0)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "months")
	}
	days, i, err := decVint(data, i)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "days")
	}
	nanos, i, err := decVint(data, i)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "nanoseconds")
	}
	if i != len(data) {
		return 0, 0, 0, errors.Errorf("%d trailing bytes", len(data)-i)
	}
	if int64(int32(months)) != months || int64(int32(days)) != days {
		return 0, 0, 0, errors.New("months or days overflow int32")
	}
	return int32(months), int32(days), nanos, nil
}

// decVint decodes a zigzag encoded unsigned vint: the number of leading one
// bits of the first byte is the number of extra bytes.
func decVint(data []byte, start int) (int64, int, error) {
	if len(data) <= start {
		return 0, 0, errors.New("unexpected end of input")
	}
	first := data[start]
	if first&0x80 == 0 {
		return decZigZag(uint64(first)), start + 1, nil
	}
	extra := bits.LeadingZeros32(uint32(^first)) - 24
	ret := uint64(first & (0xff >> uint(extra)))
	if len(data) < start+extra+1 {
		return 0, 0, errors.Errorf("expected %d bytes, got %d", start+extra+1, len(data))
	}
	for i := start + 1; i <= start+extra; i++ {
		ret = ret<<8 | uint64(data[i])
	}
	return decZigZag(ret), start + extra + 1, nil
}

func encVint(v int64) []byte {
	u := encZigZag(v)
	size := (639 - bits.LeadingZeros64(u)*9) >> 6
	if size <= 1 {
		return []byte{byte(u)}
	}
	extra := size - 1
	buf := make([]byte, size)
	for i := extra; i >= 0; i-- {
		buf[i] = byte(u)
		u >>= 8
	}
	buf[0] |= ^byte(0xff >> uint(extra))
	return buf
}

func decZigZag(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}

func encZigZag(n int64) uint64 {
	return uint64((n >> 63) ^ (n << 1))
}
