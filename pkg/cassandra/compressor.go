package cassandra

import (
	"encoding/binary"

	"github.com/gocql/gocql"
	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// SnappyCompressor compresses frame bodies with snappy.
type SnappyCompressor struct{}

func (SnappyCompressor) Name() string { return "snappy" }

func (SnappyCompressor) Encode(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (SnappyCompressor) Decode(data []byte) ([]byte, error) {
	b, err := snappy.Decode(nil, data)
	return b, errors.Wrap(err, "snappy")
}

// LZ4Compressor compresses frame bodies as an lz4 block prefixed with the
// big endian uncompressed length.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string { return "lz4" }

func (LZ4Compressor) Encode(data []byte) ([]byte, error) {
	buf := make([]byte, 4+lz4.CompressBlockBound(len(data)))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	if len(data) == 0 {
		return buf[:4], nil
	}
	n, err := lz4.CompressBlock(data, buf[4:], nil)
	if err != nil {
		return nil, errors.Wrap(err, "lz4")
	}
	if n == 0 {
		return nil, errors.New("lz4: block not compressed")
	}
	return buf[:4+n], nil
}

func (LZ4Compressor) Decode(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.Errorf("lz4: frame of %d bytes has no length", len(data))
	}
	size := binary.BigEndian.Uint32(data)
	out := make([]byte, size)
	if size == 0 {
		return out, nil
	}
	n, err := lz4.UncompressBlock(data[4:], out)
	if err != nil {
		return nil, errors.Wrap(err, "lz4")
	}
	if n != int(size) {
		return nil, errors.Errorf("lz4: expected %d bytes, got %d", size, n)
	}
	return out, nil
}

func newCompressor(name string) (gocql.Compressor, error) {
	switch name {
	case "snappy":
		return SnappyCompressor{}, nil
	case "lz4":
		return LZ4Compressor{}, nil
	}
	return nil, errors.Errorf("unknown compression %q", name)
}
