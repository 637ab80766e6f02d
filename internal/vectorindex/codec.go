// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package vectorindex

import (
	"github.com/pgvector/pgvector-go"

	"github.com/mediagateway/gateway/internal/gwerrors"
)

// Encode renders a float32 embedding as pgvector's canonical wire
// representation, used when the gateway hands a vector across a process
// boundary (e.g. to a sync peer or an offline-queue entry) instead of
// hand-rolling a little-endian byte layout.
func Encode(vector []float32) string {
	return pgvector.NewVector(vector).String()
}

// Decode parses a pgvector literal back into a float32 embedding and
// validates its width.
func Decode(literal string) ([]float32, error) {
	v, err := pgvector.ParseVector(literal)
	if err != nil {
		return nil, gwerrors.New(gwerrors.InvalidArgument, "vectorindex.Decode", err)
	}
	slice := v.Slice()
	if len(slice) != Dims {
		return nil, gwerrors.Newf(gwerrors.InvalidArgument, "vectorindex.Decode", "embedding must be %d-dim, got %d", Dims, len(slice))
	}
	return slice, nil
}
