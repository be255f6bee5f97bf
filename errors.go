// go-framelink
// Copyright (c) 2026 The Framelink Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-framelink.
//
// go-framelink is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-framelink is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-framelink; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package framelink

import (
	"errors"
	"fmt"
)

// Protocol errors. Framing and integrity failures are recovered inside
// the receiver and never surface as hard errors; only Send rejections
// and ErrRetriesExhausted reach the application.
var (
	// ErrPayloadTooLarge is returned by Send/Encode when the payload
	// exceeds the configured maximum.
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")
	// ErrLinkBusy is returned by Send while a previous frame is still
	// awaiting acknowledgment.
	ErrLinkBusy = errors.New("link busy: frame awaiting acknowledgment")
	// ErrReservedCommand is returned by Send for the ACK/NACK command IDs.
	ErrReservedCommand = errors.New("command ID reserved for link control")
	// ErrRetriesExhausted reports a definite delivery failure after the
	// initial transmission and all retries went unacknowledged.
	ErrRetriesExhausted = errors.New("retries exhausted without acknowledgment")
	// ErrNACKReceived records a peer NACK; it triggers an immediate
	// retransmission and only becomes visible once retries run out.
	ErrNACKReceived = errors.New("peer rejected frame (NACK)")
	// ErrChecksumMismatch indicates a frame whose checksum did not match
	// its contents.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrLengthOverflow indicates a declared frame length beyond buffer
	// capacity.
	ErrLengthOverflow = errors.New("frame length exceeds buffer capacity")
	// ErrFrameCorrupted indicates a malformed frame span.
	ErrFrameCorrupted = errors.New("frame corrupted")
	// ErrInvalidConfig is returned by New for unusable configuration.
	ErrInvalidConfig = errors.New("invalid link configuration")
)

// Transport errors
var (
	// ErrTransportWrite indicates a write to the underlying byte
	// transport failed.
	ErrTransportWrite = errors.New("transport write failed")
	// ErrTransportRead indicates a read from the underlying byte
	// transport failed.
	ErrTransportRead = errors.New("transport read failed")
	// ErrTransportTimeout indicates a transport operation timed out.
	ErrTransportTimeout = errors.New("transport timeout")
	// ErrTransportClosed indicates an operation on a closed transport.
	ErrTransportClosed = errors.New("transport closed")
	// ErrCommunicationFailed indicates repeated transport-level failure.
	ErrCommunicationFailed = errors.New("communication failed")
	// ErrPortNotFound indicates the requested port does not exist.
	ErrPortNotFound = errors.New("port not found")
)

// ErrorType classifies errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent indicates an error that will not resolve on retry
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates an error that may resolve on retry
	ErrorTypeTransient
	// ErrorTypeTimeout indicates a timeout that may resolve on retry
	ErrorTypeTimeout
)

// String returns a human-readable name for the error type
func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// TransportError wraps a transport-level failure with the operation and
// port it occurred on plus a retryability classification.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("transport %s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError with explicit classification
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a TransportError for a timed-out operation
func NewTimeoutError(op, port string) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       ErrTransportTimeout,
		Type:      ErrorTypeTimeout,
		Retryable: true,
	}
}

// IsRetryable reports whether the error is worth retrying. A wrapped
// TransportError carries its own classification; sentinel errors are
// classified by GetErrorType.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Retryable
	}

	switch GetErrorType(err) {
	case ErrorTypeTransient, ErrorTypeTimeout:
		return true
	case ErrorTypePermanent:
		return false
	default:
		return false
	}
}

// GetErrorType classifies an error for retry decisions
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Type
	}

	switch {
	case errors.Is(err, ErrTransportTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrCommunicationFailed),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrFrameCorrupted),
		errors.Is(err, ErrNACKReceived):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
