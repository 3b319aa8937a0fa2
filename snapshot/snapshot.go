// Package snapshot persists block-sparse arrays in a compact binary
// format. A snapshot starts with a fixed header (magic, version, array
// kind, compression codec, symmetry tag) followed by a single body
// block holding the index structure, the stored sectors with their
// dense data, and, for fermionic arrays, the set of sectors carrying a
// negative phase. The body may be LZ4 or ZSTD compressed.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/symmgo"
	"github.com/hupe1980/symmgo/dense"
	"github.com/hupe1980/symmgo/fermionic"
	"github.com/hupe1980/symmgo/symmetric"
	"github.com/hupe1980/symmgo/symmetry"
)

// Magic identifies a snapshot stream.
const Magic uint32 = 0x53594D47 // "SYMG"

// Version is the current snapshot format version.
const Version uint8 = 1

const (
	kindSymmetric uint8 = 1
	kindFermionic uint8 = 2
)

var (
	// ErrBadMagic is returned when the stream does not start with Magic.
	ErrBadMagic = errors.New("snapshot: bad magic")

	// ErrUnsupportedVersion is returned for snapshots written by a
	// newer format revision.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")

	// ErrCorrupt is returned when the body fails structural validation.
	ErrCorrupt = errors.New("snapshot: corrupt body")

	errIncompressible = errors.New("snapshot: block not compressible")
)

// Options configure snapshot writing.
type Options struct {
	// Compression selects the body codec. Default: ZSTD.
	Compression Compression

	// Logger receives progress output. Default: no-op.
	Logger *symmgo.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithCompression selects the body compression codec.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// WithLogger attaches a logger to the writer.
func WithLogger(l *symmgo.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Write serializes arr to w.
func Write(w io.Writer, arr symmgo.Array, optFns ...Option) error {
	opts := Options{
		Compression: CompressionZSTD,
		Logger:      symmgo.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var kind uint8
	var st *symmetric.Array
	var fm *fermionic.Array

	switch a := arr.(type) {
	case *symmetric.Array:
		kind = kindSymmetric
		st = a
	case *fermionic.Array:
		kind = kindFermionic
		fm = a
		st = a.Symmetric()
	default:
		return fmt.Errorf("snapshot: unsupported array kind %q", arr.Kind())
	}

	var body bytes.Buffer
	if err := encodeSymmetric(&body, st); err != nil {
		return err
	}
	if fm != nil {
		encodePhases(&body, fm)
	}

	codec := opts.Compression
	compressed, err := compress(body.Bytes(), codec)
	if errors.Is(err, errIncompressible) {
		codec = CompressionNone
		compressed = body.Bytes()
	} else if err != nil {
		return err
	}

	opts.Logger.Debug("writing snapshot",
		"kind", arr.Kind(),
		"compression", codec.String(),
		"body_bytes", body.Len(),
		"stored_bytes", len(compressed),
	)

	tag := st.Symmetry().Tag()
	if len(tag) > 255 {
		return fmt.Errorf("snapshot: symmetry tag too long: %d bytes", len(tag))
	}

	var head bytes.Buffer
	writeU32(&head, Magic)
	head.WriteByte(Version)
	head.WriteByte(kind)
	head.WriteByte(uint8(codec))
	head.WriteByte(uint8(len(tag)))
	head.WriteString(tag)
	writeU32(&head, uint32(body.Len()))
	writeU32(&head, uint32(len(compressed)))

	if _, err := w.Write(head.Bytes()); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("snapshot: write body: %w", err)
	}
	return nil
}

// Read deserializes an array from r. The symmetry named in the header
// must be registered.
func Read(r io.Reader) (symmgo.Array, error) {
	var fixed [8]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if binary.LittleEndian.Uint32(fixed[0:4]) != Magic {
		return nil, ErrBadMagic
	}
	if fixed[4] != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, fixed[4])
	}
	kind := fixed[5]
	codec := Compression(fixed[6])
	tagLen := int(fixed[7])

	tag := make([]byte, tagLen)
	if _, err := io.ReadFull(r, tag); err != nil {
		return nil, fmt.Errorf("snapshot: read symmetry tag: %w", err)
	}
	sym, err := symmetry.Get(string(tag))
	if err != nil {
		return nil, err
	}

	var sizes [8]byte
	if _, err := io.ReadFull(r, sizes[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read body sizes: %w", err)
	}
	bodyLen := int(binary.LittleEndian.Uint32(sizes[0:4]))
	storedLen := int(binary.LittleEndian.Uint32(sizes[4:8]))

	stored := make([]byte, storedLen)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, fmt.Errorf("snapshot: read body: %w", err)
	}
	body, err := decompress(stored, codec, bodyLen)
	if err != nil {
		return nil, err
	}
	if len(body) != bodyLen {
		return nil, fmt.Errorf("%w: body length %d, expected %d", ErrCorrupt, len(body), bodyLen)
	}

	dec := &decoder{buf: body}
	st, err := decodeSymmetric(dec, sym)
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindSymmetric:
		return st, nil
	case kindFermionic:
		fm := fermionic.FromSymmetric(st)
		if err := decodePhases(dec, fm); err != nil {
			return nil, err
		}
		return fm, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrCorrupt, kind)
	}
}

// encodeSymmetric writes chargeTotal, the index structure and all
// stored sectors with their dense data.
func encodeSymmetric(buf *bytes.Buffer, st *symmetric.Array) error {
	writeI64(buf, int64(st.ChargeTotal()))

	indices := st.Indices()
	writeU32(buf, uint32(len(indices)))
	for _, ix := range indices {
		encodeIndex(buf, ix)
	}

	sectors := st.Sectors()
	writeU32(buf, uint32(len(sectors)))
	for _, sec := range sectors {
		for _, c := range sec {
			writeI64(buf, int64(c))
		}
		blk, ok := st.Block(sec)
		if !ok {
			return fmt.Errorf("snapshot: sector %v listed but not stored", sec)
		}
		data := blk.Data()
		writeU32(buf, uint32(len(data)))
		for _, v := range data {
			writeU64(buf, math.Float64bits(real(v)))
			writeU64(buf, math.Float64bits(imag(v)))
		}
	}
	return nil
}

// encodeIndex writes one BlockIndex, recursing into fusion records.
func encodeIndex(buf *bytes.Buffer, ix *symmetric.BlockIndex) {
	if ix.Flow() {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	charges := ix.Charges()
	writeU32(buf, uint32(len(charges)))
	for _, c := range charges {
		d, _ := ix.SizeOf(c)
		writeI64(buf, int64(c))
		writeU32(buf, uint32(d))
	}

	sub := ix.Sub()
	if sub == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	writeU32(buf, uint32(len(sub.Indices)))
	for _, s := range sub.Indices {
		encodeIndex(buf, s)
	}
	writeU32(buf, uint32(len(sub.Extents)))
	for _, c := range charges {
		extents, ok := sub.Extents[c]
		if !ok {
			continue
		}
		writeI64(buf, int64(c))
		writeU32(buf, uint32(len(extents)))
		for _, ext := range extents {
			for _, sc := range ext.Charges {
				writeI64(buf, int64(sc))
			}
			writeU32(buf, uint32(ext.Size))
		}
	}
}

// encodePhases writes the sectors carrying a negative phase.
func encodePhases(buf *bytes.Buffer, fm *fermionic.Array) {
	var negative []symmetric.Sector
	for _, sec := range fm.Sectors() {
		if fm.Phase(sec) < 0 {
			negative = append(negative, sec)
		}
	}
	writeU32(buf, uint32(len(negative)))
	for _, sec := range negative {
		for _, c := range sec {
			writeI64(buf, int64(c))
		}
	}
}

func decodeSymmetric(dec *decoder, sym symmetry.Symmetry) (*symmetric.Array, error) {
	total, err := dec.i64()
	if err != nil {
		return nil, err
	}

	nIndices, err := dec.count(6)
	if err != nil {
		return nil, err
	}
	indices := make([]*symmetric.BlockIndex, nIndices)
	for i := range indices {
		ix, err := decodeIndex(dec)
		if err != nil {
			return nil, err
		}
		indices[i] = ix
	}

	st := symmetric.New(sym, indices, symmetry.Charge(total))

	rank := nIndices
	nSectors, err := dec.count(rank*8 + 4)
	if err != nil {
		return nil, err
	}
	for i := 0; i < nSectors; i++ {
		sec := make(symmetric.Sector, rank)
		for j := range sec {
			c, err := dec.i64()
			if err != nil {
				return nil, err
			}
			sec[j] = symmetry.Charge(c)
		}
		n, err := dec.count(16)
		if err != nil {
			return nil, err
		}
		data := make([]complex128, n)
		for j := range data {
			re, err := dec.u64()
			if err != nil {
				return nil, err
			}
			im, err := dec.u64()
			if err != nil {
				return nil, err
			}
			data[j] = complex(math.Float64frombits(re), math.Float64frombits(im))
		}
		shape, err := st.SectorShape(sec)
		if err != nil {
			return nil, err
		}
		blk, err := dense.New(shape, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		st.SetBlock(sec, blk)
	}
	return st, nil
}

func decodeIndex(dec *decoder) (*symmetric.BlockIndex, error) {
	flowByte, err := dec.u8()
	if err != nil {
		return nil, err
	}
	flow := flowByte != 0

	nCharges, err := dec.count(12)
	if err != nil {
		return nil, err
	}
	chargemap := make(map[symmetry.Charge]int, nCharges)
	for i := 0; i < nCharges; i++ {
		c, err := dec.i64()
		if err != nil {
			return nil, err
		}
		d, err := dec.u32()
		if err != nil {
			return nil, err
		}
		chargemap[symmetry.Charge(c)] = int(d)
	}
	ix := symmetric.NewBlockIndex(chargemap, flow)

	hasSub, err := dec.u8()
	if err != nil {
		return nil, err
	}
	if hasSub == 0 {
		return ix, nil
	}

	nSub, err := dec.count(6)
	if err != nil {
		return nil, err
	}
	subIndices := make([]*symmetric.BlockIndex, nSub)
	for i := range subIndices {
		s, err := decodeIndex(dec)
		if err != nil {
			return nil, err
		}
		subIndices[i] = s
	}

	nExtCharges, err := dec.count(12)
	if err != nil {
		return nil, err
	}
	extents := make(map[symmetry.Charge][]symmetric.Extent, nExtCharges)
	for i := 0; i < nExtCharges; i++ {
		c, err := dec.i64()
		if err != nil {
			return nil, err
		}
		nExtents, err := dec.count(nSub*8 + 4)
		if err != nil {
			return nil, err
		}
		list := make([]symmetric.Extent, nExtents)
		for j := range list {
			charges := make(symmetric.Sector, nSub)
			for k := range charges {
				sc, err := dec.i64()
				if err != nil {
					return nil, err
				}
				charges[k] = symmetry.Charge(sc)
			}
			size, err := dec.u32()
			if err != nil {
				return nil, err
			}
			list[j] = symmetric.Extent{Charges: charges, Size: int(size)}
		}
		extents[symmetry.Charge(c)] = list
	}

	return ix.WithSub(&symmetric.SubInfo{Indices: subIndices, Extents: extents}), nil
}

func decodePhases(dec *decoder, fm *fermionic.Array) error {
	rank := fm.NDim()
	n, err := dec.count(rank * 8)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		sec := make(symmetric.Sector, rank)
		for j := range sec {
			c, err := dec.i64()
			if err != nil {
				return err
			}
			sec[j] = symmetry.Charge(c)
		}
		if err := fm.SetPhase(sec, -1); err != nil {
			return err
		}
	}
	return nil
}

// decoder consumes a body buffer with bounds checking.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) take(n int) ([]byte, error) {
	if d.off+n > len(d.buf) {
		return nil, fmt.Errorf("%w: truncated at offset %d", ErrCorrupt, d.off)
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) u8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// count reads a u32 element count and rejects values that could not
// possibly fit in the remaining body, assuming at least perItem bytes
// per element. Corrupt length fields must not drive allocations.
func (d *decoder) count(perItem int) (int, error) {
	n, err := d.u32()
	if err != nil {
		return 0, err
	}
	if int64(n)*int64(perItem) > int64(len(d.buf)-d.off) {
		return 0, fmt.Errorf("%w: count %d exceeds remaining %d bytes", ErrCorrupt, n, len(d.buf)-d.off)
	}
	return int(n), nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *decoder) u64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *decoder) i64() (int64, error) {
	v, err := d.u64()
	return int64(v), err
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeI64(buf *bytes.Buffer, v int64) {
	writeU64(buf, uint64(v))
}
