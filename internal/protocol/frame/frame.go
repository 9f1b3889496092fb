package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"otprelay/internal/domain"
)

const (
	// HeaderLen is the size of the kind byte plus the length field.
	HeaderLen = 5

	// MaxEncodable is the largest payload Encode accepts.
	MaxEncodable = math.MaxInt32

	// DefaultMaxPayload caps the length Decode will allocate for. Public keys
	// and ciphertexts are a few hundred bytes, so 1 MiB leaves ample room.
	DefaultMaxPayload uint32 = 1 << 20
)

var (
	// ErrPeerClosed reports a clean end of stream at a frame boundary.
	ErrPeerClosed = errors.New("frame: peer closed")

	// ErrMalformedFrame is matched by every *MalformedFrameError.
	ErrMalformedFrame = errors.New("frame: malformed frame")

	// ErrTruncatedPayload reports a stream that ended inside a payload.
	ErrTruncatedPayload = fmt.Errorf("frame: truncated payload: %w", io.ErrUnexpectedEOF)

	// ErrPayloadTooLarge is returned by Encode for payloads over MaxEncodable.
	ErrPayloadTooLarge = errors.New("frame: payload too large")
)

// MalformedFrameError carries the offending header length.
type MalformedFrameError struct {
	Length uint32
	Max    uint32
}

func (e *MalformedFrameError) Error() string {
	if e.Length > math.MaxInt32 {
		return fmt.Sprintf("frame: malformed frame: length %#x has the sign bit set", e.Length)
	}
	return fmt.Sprintf("frame: malformed frame: length %d exceeds limit %d", e.Length, e.Max)
}

func (e *MalformedFrameError) Is(target error) bool { return target == ErrMalformedFrame }

// Encode returns the wire bytes of m.
func Encode(m domain.Message) ([]byte, error) {
	if len(m.Payload) > MaxEncodable {
		return nil, ErrPayloadTooLarge
	}
	out := make([]byte, HeaderLen+len(m.Payload))
	putHeader(out[:HeaderLen], m.Kind, len(m.Payload))
	copy(out[HeaderLen:], m.Payload)
	return out, nil
}

// Write encodes m and hands the whole frame to w in a single Write call.
func Write(w io.Writer, m domain.Message) error {
	b, err := Encode(m)
	if err != nil {
		return err
	}
	n, err := w.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return io.ErrShortWrite
	}
	return nil
}

// Decode reads exactly one frame from r.
//
// A stream ending within the header yields ErrPeerClosed. A length with the
// sign bit set, or above maxPayload, yields a *MalformedFrameError. A stream
// ending within the payload yields ErrTruncatedPayload. A maxPayload of zero
// selects DefaultMaxPayload.
func Decode(r io.Reader, maxPayload uint32) (domain.Message, error) {
	var hdr [HeaderLen]byte
	return decode(r, hdr[:], maxPayload)
}

// Reader decodes consecutive frames from one stream.
type Reader struct {
	r   io.Reader
	max uint32
	hdr [HeaderLen]byte
}

// NewReader returns a Reader over r with the given payload cap.
func NewReader(r io.Reader, maxPayload uint32) *Reader {
	return &Reader{r: r, max: maxPayload}
}

// Next decodes the next frame. Errors are those of Decode.
func (fr *Reader) Next() (domain.Message, error) {
	return decode(fr.r, fr.hdr[:], fr.max)
}

func decode(r io.Reader, hdr []byte, maxPayload uint32) (domain.Message, error) {
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayload
	}
	if _, err := io.ReadFull(r, hdr); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return domain.Message{}, ErrPeerClosed
		}
		return domain.Message{}, fmt.Errorf("frame: read header: %w", err)
	}

	kind := domain.Kind(hdr[0])
	length := binary.BigEndian.Uint32(hdr[1:HeaderLen])
	if length > MaxEncodable || length > maxPayload {
		return domain.Message{}, &MalformedFrameError{Length: length, Max: maxPayload}
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return domain.Message{}, ErrTruncatedPayload
			}
			return domain.Message{}, fmt.Errorf("frame: read payload: %w", err)
		}
	}
	return domain.Message{Kind: kind, Payload: payload}, nil
}

func putHeader(hdr []byte, kind domain.Kind, n int) {
	hdr[0] = byte(kind)
	binary.BigEndian.PutUint32(hdr[1:HeaderLen], uint32(n))
}
