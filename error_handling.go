package nv12

import (
	"errors"
	"fmt"
)

// ExceptionCode represents a status returned by nv12 operations.
//
// It indicates whether an operation succeeded or failed, and if it failed,
// which category of error occurred. Constructors and layout checks return an
// ExceptionCode alongside their result.
type ExceptionCode int

// Predefined ExceptionCodes correspond to specific failure types, such as a
// buffer that is too short for the declared geometry or dimensions the NV12
// layout cannot express.
const (
	ExceptionCodeNoError ExceptionCode = iota
	ExceptionCodeBadDimensions
	ExceptionCodeOddDimensions
	ExceptionCodeBufferTooShort
	ExceptionCodeUnsupportedLayout
	ExceptionCodeBadStride
)

var exceptionMessages = map[ExceptionCode]string{
	ExceptionCodeBadDimensions:     "width and height must be positive",
	ExceptionCodeOddDimensions:     "width and height must be even",
	ExceptionCodeBufferTooShort:    "buffer is too short for the declared dimensions",
	ExceptionCodeUnsupportedLayout: "only 8-bit 4:2:0 semi-planar YUV is supported",
	ExceptionCodeBadStride:         "plane stride is smaller than the plane row",
}

// IsNone returns true if the operation completed successfully.
func (e ExceptionCode) IsNone() bool { return e == ExceptionCodeNoError }

// GetError returns a human-readable description of the error.
//
// If the ExceptionCode represents a failure, this returns a descriptive Go
// error. If there was no error, the returned error is nil.
func (e ExceptionCode) GetError() error {
	if e.IsNone() {
		return nil
	}
	msg, ok := exceptionMessages[e]
	if !ok {
		return fmt.Errorf("nv12: unknown exception code %d", int(e))
	}
	return errors.New("nv12: " + msg)
}

// BoundsError is the panic value raised when a pixel is addressed outside of
// an image. It marks a caller bug rather than a recoverable condition.
type BoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("nv12: image index (%d, %d) out of bounds (%d, %d)",
		e.X, e.Y, e.Width, e.Height)
}
