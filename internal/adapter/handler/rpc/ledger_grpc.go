// Package rpc describes the lagerapp.v1.Ledger gRPC service. Messages travel
// as JSON through the codec registered in this package.
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName = "lagerapp.v1.Ledger"

	AdjustStockMethod   = "/" + ServiceName + "/AdjustStock"
	AddStockMethod      = "/" + ServiceName + "/AddStock"
	LocationStockMethod = "/" + ServiceName + "/LocationStock"
	DashboardMethod     = "/" + ServiceName + "/Dashboard"
)

type LedgerServer interface {
	AdjustStock(context.Context, *AdjustStockRequest) (*AdjustStockResponse, error)
	AddStock(context.Context, *AdjustStockRequest) (*AdjustStockResponse, error)
	LocationStock(context.Context, *LocationStockRequest) (*LocationStockResponse, error)
	Dashboard(context.Context, *DashboardRequest) (*DashboardResponse, error)
}

func RegisterLedgerServer(s grpc.ServiceRegistrar, srv LedgerServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AdjustStock", Handler: adjustStockHandler},
		{MethodName: "AddStock", Handler: addStockHandler},
		{MethodName: "LocationStock", Handler: locationStockHandler},
		{MethodName: "Dashboard", Handler: dashboardHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lagerapp/v1/ledger",
}

func adjustStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AdjustStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServer).AdjustStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AdjustStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServer).AdjustStock(ctx, req.(*AdjustStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func addStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AdjustStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServer).AddStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AddStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServer).AddStock(ctx, req.(*AdjustStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func locationStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(LocationStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServer).LocationStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LocationStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServer).LocationStock(ctx, req.(*LocationStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func dashboardHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DashboardRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServer).Dashboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DashboardMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServer).Dashboard(ctx, req.(*DashboardRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// LedgerClient calls the service with the JSON codec.
type LedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{cc: cc}
}

func (c *LedgerClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *LedgerClient) AdjustStock(ctx context.Context, in *AdjustStockRequest, opts ...grpc.CallOption) (*AdjustStockResponse, error) {
	out := new(AdjustStockResponse)
	if err := c.invoke(ctx, AdjustStockMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) AddStock(ctx context.Context, in *AdjustStockRequest, opts ...grpc.CallOption) (*AdjustStockResponse, error) {
	out := new(AdjustStockResponse)
	if err := c.invoke(ctx, AddStockMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) LocationStock(ctx context.Context, in *LocationStockRequest, opts ...grpc.CallOption) (*LocationStockResponse, error) {
	out := new(LocationStockResponse)
	if err := c.invoke(ctx, LocationStockMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) Dashboard(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*DashboardResponse, error) {
	out := new(DashboardResponse)
	if err := c.invoke(ctx, DashboardMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
