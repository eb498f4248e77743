package xdr

import (
	"encoding/binary"
	"io"
)

// Padding returns the number of zero bytes required to align a field of
// the given byte length to the next 4-byte XDR boundary.
//
// Per RFC 4506 Section 3 (3.9 opaque, 3.10 string, etc.), every XDR data
// item begins and ends on a 4-byte boundary; variable-length data is
// padded with zero bytes up to the next multiple of 4.
func Padding(length uint32) uint32 {
	return (4 - (length % 4)) % 4
}

// PutUint32 encodes a 32-bit unsigned integer (RFC 4506 §4.1, Integer).
func PutUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// PutInt32 encodes a 32-bit signed integer (RFC 4506 §4.1, Integer),
// two's complement.
func PutInt32(w io.Writer, v int32) error {
	return PutUint32(w, uint32(v))
}

// PutUint64 encodes a 64-bit unsigned integer (RFC 4506 §4.5, Hyper Integer).
func PutUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// PutInt64 encodes a 64-bit signed integer (RFC 4506 §4.5, Hyper Integer).
func PutInt64(w io.Writer, v int64) error {
	return PutUint64(w, uint64(v))
}

// PutBool encodes a boolean as a uint32, 0 for false and 1 for true (RFC
// 4506 §4.4, Boolean).
func PutBool(w io.Writer, v bool) error {
	if v {
		return PutUint32(w, 1)
	}
	return PutUint32(w, 0)
}

// PutFloat32 encodes a 32-bit IEEE floating point value (RFC 4506 §4.6).
func PutFloat32(w io.Writer, v float32) error {
	return PutUint32(w, float32bits(v))
}

// PutFloat64 encodes a 64-bit IEEE floating point value (RFC 4506 §4.7).
func PutFloat64(w io.Writer, v float64) error {
	return PutUint64(w, float64bits(v))
}

// PutPadding writes the zero padding bytes required to align a
// just-written field of the given length to a 4-byte boundary.
func PutPadding(w io.Writer, length uint32) error {
	n := Padding(length)
	if n == 0 {
		return nil
	}
	var zero [4]byte
	_, err := w.Write(zero[:n])
	return err
}

// PutOpaque encodes variable-length opaque data (RFC 4506 §4.10): a
// uint32 length, the bytes themselves, and zero padding to a 4-byte
// boundary.
func PutOpaque(w io.Writer, data []byte) error {
	if uint64(len(data)) > 0xFFFFFFFF {
		return NewOverflowError("opaque", uint32(len(data)), 0xFFFFFFFF)
	}
	if err := PutUint32(w, uint32(len(data))); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return PutPadding(w, uint32(len(data)))
}

// PutFixedOpaque encodes fixed-length opaque data (RFC 4506 §4.9): the raw
// bytes with no length prefix, padded to a 4-byte boundary.
func PutFixedOpaque(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	return PutPadding(w, uint32(len(data)))
}

// PutString encodes a variable-length string (RFC 4506 §4.11), which
// shares opaque data's length-prefixed, padded encoding.
func PutString(w io.Writer, s string) error {
	return PutOpaque(w, []byte(s))
}

// GetUint32 decodes a 32-bit unsigned integer.
func GetUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// GetInt32 decodes a 32-bit signed integer.
func GetInt32(r io.Reader) (int32, error) {
	v, err := GetUint32(r)
	return int32(v), err
}

// GetUint64 decodes a 64-bit unsigned integer.
func GetUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// GetInt64 decodes a 64-bit signed integer.
func GetInt64(r io.Reader) (int64, error) {
	v, err := GetUint64(r)
	return int64(v), err
}

// GetBool decodes an XDR boolean (RFC 4506 §4.4), which must be 0 or 1;
// any other value fails with ErrShouldBeZero.
func GetBool(r io.Reader) (bool, error) {
	v, err := GetUint32(r)
	if err != nil {
		return false, err
	}
	if v > 1 {
		return false, NewShouldBeZeroError("bool")
	}
	return v != 0, nil
}

// GetFloat32 decodes a 32-bit IEEE floating point value.
func GetFloat32(r io.Reader) (float32, error) {
	v, err := GetUint32(r)
	if err != nil {
		return 0, err
	}
	return float32frombits(v), nil
}

// GetFloat64 decodes a 64-bit IEEE floating point value.
func GetFloat64(r io.Reader) (float64, error) {
	v, err := GetUint64(r)
	if err != nil {
		return 0, err
	}
	return float64frombits(v), nil
}

// GetPadding reads and discards the padding bytes that follow a
// variable-length field of the given length, verifying each is zero per
// the ErrShouldBeZero invariant (spec: padding bytes must be zero).
func GetPadding(r io.Reader, length uint32) error {
	n := Padding(length)
	if n == 0 {
		return nil
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		return err
	}
	for _, b := range buf[:n] {
		if b != 0 {
			return NewShouldBeZeroError("padding")
		}
	}
	return nil
}

// GetOpaque decodes variable-length opaque data bounded by maxLen. A
// maxLen of Unbounded{}.N() admits any length the transport can deliver.
func GetOpaque(r io.Reader, maxLen uint32) ([]byte, error) {
	length, err := GetUint32(r)
	if err != nil {
		return nil, err
	}
	if length > maxLen {
		return nil, NewOverflowError("opaque", length, maxLen)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	if err := GetPadding(r, length); err != nil {
		return nil, err
	}
	return data, nil
}

// GetFixedOpaque decodes fixed-length opaque data of exactly n bytes.
func GetFixedOpaque(r io.Reader, n uint32) ([]byte, error) {
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	if err := GetPadding(r, n); err != nil {
		return nil, err
	}
	return data, nil
}

// GetString decodes a variable-length string bounded by maxLen bytes.
func GetString(r io.Reader, maxLen uint32) (string, error) {
	data, err := GetOpaque(r, maxLen)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
