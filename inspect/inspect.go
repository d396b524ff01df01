// Package inspect exposes a scope tree to tooling over Connect RPC.
//
// The service has two unary procedures, both taking google.protobuf.Empty:
// Dump returns the rendered tree as a StringValue and Snapshot returns the
// last saved state container as a Struct in the bundle codec's layout.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tailored-agentic-units/scopes/bundle"
)

// Service and procedure names.
const (
	ServiceName        = "scopes.inspect.v1.InspectService"
	DumpProcedure      = "/" + ServiceName + "/Dump"
	SnapshotProcedure  = "/" + ServiceName + "/Snapshot"
	servicePathPattern = "/" + ServiceName + "/"
)

// ErrNoSnapshot is reported when the source has no snapshot yet.
var ErrNoSnapshot = errors.New("no snapshot available")

// Source is what the service inspects. *runtime.Runtime implements it.
type Source interface {
	Dump() string
	Snapshot() (*bundle.Bundle, bool)
}

// NewHandler returns the service path prefix and its handler, ready to be
// mounted on a mux.
func NewHandler(src Source, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(DumpProcedure, connect.NewUnaryHandler(
		DumpProcedure,
		func(_ context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[wrapperspb.StringValue], error) {
			return connect.NewResponse(wrapperspb.String(src.Dump())), nil
		},
		opts...,
	))
	mux.Handle(SnapshotProcedure, connect.NewUnaryHandler(
		SnapshotProcedure,
		func(_ context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
			b, ok := src.Snapshot()
			if !ok {
				return nil, connect.NewError(connect.CodeNotFound, ErrNoSnapshot)
			}
			s, err := bundle.ToStruct(b)
			if err != nil {
				return nil, connect.NewError(connect.CodeInternal, err)
			}
			return connect.NewResponse(s), nil
		},
		opts...,
	))
	return servicePathPattern, mux
}

// Client calls an inspect service.
type Client struct {
	dump     *connect.Client[emptypb.Empty, wrapperspb.StringValue]
	snapshot *connect.Client[emptypb.Empty, structpb.Struct]
}

// NewClient creates a client for the service at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		dump:     connect.NewClient[emptypb.Empty, wrapperspb.StringValue](httpClient, baseURL+DumpProcedure, opts...),
		snapshot: connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+SnapshotProcedure, opts...),
	}
}

// Dump returns the rendered scope tree.
func (c *Client) Dump(ctx context.Context) (string, error) {
	resp, err := c.dump.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return "", fmt.Errorf("inspect dump: %w", err)
	}
	return resp.Msg.GetValue(), nil
}

// Snapshot returns the last saved container. It reports false when the
// service has none.
func (c *Client) Snapshot(ctx context.Context) (*bundle.Bundle, bool, error) {
	resp, err := c.snapshot.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		if connect.CodeOf(err) == connect.CodeNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("inspect snapshot: %w", err)
	}

	b, err := bundle.FromStruct(resp.Msg)
	if err != nil {
		return nil, false, fmt.Errorf("inspect snapshot: %w", err)
	}
	return b, true, nil
}
