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
	"net"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpc_zap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	_ "google.golang.org/grpc/encoding/gzip" // registers gzip as an accepted wire compressor

	collectorpb "go.opentelemetry.io/proto/otlp/collector/profiles/v1development"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/obsring"
)

// NewGRPCServer builds a *grpc.Server bound to Server, with a
// recovery+logging interceptor chain and spec.md §6's 16 MiB decoded
// message cap, matching the interceptor-chain convention used
// throughout Erigon's own gRPC services.
func NewGRPCServer(store *dbstore.Store, ring *obsring.Ring, log *zap.Logger) *grpc.Server {
	chain := grpc_middleware.ChainUnaryServer(
		grpc_recovery.UnaryServerInterceptor(),
		grpc_zap.UnaryServerInterceptor(log),
	)
	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(MaxDecodedMessageBytes),
		grpc.UnaryInterceptor(chain),
	)
	collectorpb.RegisterProfilesServiceServer(srv, NewServer(store, ring, log))
	return srv
}

// Listen starts serving gRPC requests on addr until ctx-driven
// shutdown; callers run it in its own goroutine and call srv.GracefulStop
// themselves on shutdown.
func Listen(srv *grpc.Server, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return srv.Serve(lis)
}
