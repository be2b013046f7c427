// Package mcproto is the concrete Minecraft Java Edition packet catalogue:
// it implements protocol.Codec over the Handshake/Status/Login/Config/Play
// packet types named by the connection state chart.
package mcproto

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"voxelgate/internal/protocol"
)

// Writer accumulates a packet body using the protocol's big-endian
// fixed-width integers, VarInt-prefixed strings/byte-arrays, and raw VarInts.
//
// Grounded on the teacher's gameserver/packet.Writer: a growable buffer plus
// manual per-type encoding methods and a sync.Pool to avoid a fresh
// allocation per outbound packet. Byte order and string encoding differ
// (Minecraft is big-endian UTF-8 length-prefixed, not little-endian
// UTF-16LE null-terminated) since the wire format itself differs.
type Writer struct {
	buf []byte
}

var writerPool = sync.Pool{
	New: func() any { return &Writer{buf: make([]byte, 0, 256)} },
}

// GetWriter returns a reset Writer from the pool.
func GetWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.buf = w.buf[:0]
	return w
}

// Put returns w to the pool. w must not be used afterward.
func (w *Writer) Put() { writerPool.Put(w) }

// NewWriter allocates a fresh Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) WriteByte(b byte) { w.buf = append(w.buf, b) }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

func (w *Writer) WriteShort(v int16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(v))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteInt(v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteLong(v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteFloat(v float32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], math.Float32bits(v))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteDouble(v float64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteVarInt(v int32) {
	w.buf = protocol.PutVarInt(w.buf, v)
}

// WriteString writes a VarInt-length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.WriteVarInt(int32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// WriteByteArray writes a VarInt length prefix followed by the raw bytes.
func (w *Writer) WriteByteArray(b []byte) {
	w.WriteVarInt(int32(len(b)))
	w.WriteBytes(b)
}

// WriteUUID writes a 128-bit UUID as two big-endian longs.
func (w *Writer) WriteUUID(hi, lo uint64) {
	var tmp [16]byte
	binary.BigEndian.PutUint64(tmp[:8], hi)
	binary.BigEndian.PutUint64(tmp[8:], lo)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) Bytes() []byte { return w.buf }
func (w *Writer) Len() int      { return len(w.buf) }

// Reader consumes a decoded packet body in the same encoding Writer
// produces. Every method returns an error instead of panicking on
// truncated input, matching protocol.OutcomeInvalidData semantics at the
// call site.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader { return &Reader{data: data} }

func (r *Reader) need(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("mcproto: short read (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	return nil
}

func (r *Reader) ReadByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

func (r *Reader) ReadShort() (int16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := int16(binary.BigEndian.Uint16(r.data[r.pos:]))
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadInt() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadLong() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadFloat() (float32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := math.Float32frombits(binary.BigEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadDouble() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

// varIntReader adapts Reader to io.ByteReader for protocol.ReadVarInt.
type varIntReader struct{ r *Reader }

func (v varIntReader) ReadByte() (byte, error) { return v.r.ReadByte() }

func (r *Reader) ReadVarInt() (int32, error) {
	return protocol.ReadVarInt(varIntReader{r})
}

func (r *Reader) ReadString(maxLen int) (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	if n < 0 || (maxLen > 0 && int(n) > maxLen) {
		return "", fmt.Errorf("mcproto: string length %d exceeds max %d", n, maxLen)
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *Reader) ReadByteArray() ([]byte, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("mcproto: negative byte array length %d", n)
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

func (r *Reader) ReadUUID() (hi, lo uint64, err error) {
	if err := r.need(16); err != nil {
		return 0, 0, err
	}
	hi = binary.BigEndian.Uint64(r.data[r.pos:])
	lo = binary.BigEndian.Uint64(r.data[r.pos+8:])
	r.pos += 16
	return hi, lo, nil
}

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }
