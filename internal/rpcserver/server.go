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

package rpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	collectorpb "go.opentelemetry.io/proto/otlp/collector/profiles/v1development"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/ingest"
	"github.com/flamehost/profsink/internal/obsring"
)

// MaxDecodedMessageBytes is spec.md §6's "Maximum decoded message
// size = 16 MiB".
const MaxDecodedMessageBytes = 16 << 20

// Server implements collectorpb.ProfilesServiceServer against a
// dbstore.Store, logging each call's decoded dictionary sizes to an
// observation ring (SPEC_FULL.md's gRPC structured request log
// supplement).
type Server struct {
	collectorpb.UnimplementedProfilesServiceServer

	store *dbstore.Store
	ring  *obsring.Ring
	log   *zap.Logger
}

func NewServer(store *dbstore.Store, ring *obsring.Ring, log *zap.Logger) *Server {
	return &Server{store: store, ring: ring, log: log}
}

// ExportProfiles implements spec.md §6: translate the wire request,
// run it through internal/ingest, and always return PartialSuccess
// unset. A RequestRejection from ingest maps to InvalidArgument; any
// other error is Internal.
func (s *Server) ExportProfiles(ctx context.Context, req *collectorpb.ExportProfilesServiceRequest) (*collectorpb.ExportProfilesServiceResponse, error) {
	decoded, sizes := translateRequest(req)

	s.ring.Push(obsring.Entry{
		Kind:     "ExportProfiles",
		Payload:  sizes,
		Received: time.Now(),
	})

	if err := ingest.ExportProfiles(s.store, decoded); err != nil {
		if ingest.IsRequestRejection(err) {
			s.log.Warn("rejected ExportProfiles request", zap.Error(err))
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		s.log.Error("ExportProfiles failed", zap.Error(err))
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &collectorpb.ExportProfilesServiceResponse{}, nil
}
