// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package ingest

import (
	"errors"
	"fmt"
)

// RequestRejection is spec.md §7's protocol-level error class: the
// request is malformed in a way that means no partial state may be
// persisted. internal/rpcserver maps this to an InvalidArgument
// status; ingest itself never commits a batch once one of these is
// returned.
type RequestRejection struct {
	msg string
}

func (e *RequestRejection) Error() string { return e.msg }

func rejectf(format string, args ...any) error {
	return &RequestRejection{msg: "ingest: " + fmt.Sprintf(format, args...)}
}

// IsRequestRejection reports whether err is (or wraps) a RequestRejection.
func IsRequestRejection(err error) bool {
	var r *RequestRejection
	return errors.As(err, &r)
}

var (
	ErrMissingDictionary = &RequestRejection{msg: "ingest: request is missing its dictionary"}
	ErrUnknownFrameType  = &RequestRejection{msg: "ingest: unknown profile.frame.type attribute value"}
	ErrIndexOutOfBounds  = &RequestRejection{msg: "ingest: index out of bounds"}
	ErrInvalidFileId     = &RequestRejection{msg: "ingest: could not parse a FileId"}
)
