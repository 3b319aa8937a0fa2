package snapshot

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the body compression codec of a snapshot.
type Compression uint8

const (
	// CompressionNone stores the body uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD Compression = 2
)

// String returns the codec name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// compress encodes data with the selected codec. The caller frames the
// result with explicit sizes, so block codecs are used throughout.
func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		var compressor lz4.Compressor
		n, err := compressor.CompressBlock(data, buf)
		if err != nil {
			return nil, fmt.Errorf("lz4 compression failed: %w", err)
		}
		if n == 0 {
			// Incompressible: lz4 signals this with a zero length.
			return nil, errIncompressible
		}
		return buf[:n], nil
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("unknown compression codec %d", c)
	}
}

// decompress decodes data produced by compress. uncompressedSize is
// taken from the block frame.
func decompress(data []byte, c Compression, uncompressedSize int) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		buf := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		return buf[:n], nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompression failed: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression codec %d", c)
	}
}
