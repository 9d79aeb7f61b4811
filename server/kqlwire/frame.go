package kqlwire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize caps a single frame body.
const MaxFrameSize = 8 << 20

const headerSize = 4

var (
	ErrEmptyFrame    = errors.New("kqlwire: empty frame")
	ErrFrameTooLarge = errors.New("kqlwire: frame too large")
)

// ReadFrame decodes one frame into v: a big-endian uint32 body length
// followed by a JSON body. Numbers decode as json.Number so cell values
// keep the digits the service sent.
func ReadFrame(r io.Reader, v any) error {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	switch n := binary.BigEndian.Uint32(hdr[:]); {
	case n == 0:
		return ErrEmptyFrame
	case n > MaxFrameSize:
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, MaxFrameSize)
	default:
		body := io.LimitReader(r, int64(n))
		dec := json.NewDecoder(body)
		dec.UseNumber()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("kqlwire: bad json: %w", err)
		}
		// the next frame starts right after this body
		_, err := io.Copy(io.Discard, body)
		return err
	}
}

// WriteFrame encodes v and writes header and body in one call.
func WriteFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kqlwire: marshal: %w", err)
	}
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(body), MaxFrameSize)
	}

	buf := make([]byte, headerSize, headerSize+len(body))
	binary.BigEndian.PutUint32(buf, uint32(len(body)))
	_, err = w.Write(append(buf, body...))
	return err
}
