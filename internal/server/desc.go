package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "pricetag.v1.ScanService"

// ScanServiceServer is the server API. Requests and responses are
// google.protobuf.Struct so no generated stubs are needed.
type ScanServiceServer interface {
	Transform(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Split(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Score(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitScan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetScan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListScans(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetMode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleMode(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryFunc func(ScanServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, fn unaryFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(ScanServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return fn(srv.(ScanServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ScanServiceDesc describes pricetag.v1.ScanService for grpc.ServiceRegistrar.
var ScanServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScanServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Transform", ScanServiceServer.Transform),
		unaryHandler("Split", ScanServiceServer.Split),
		unaryHandler("Score", ScanServiceServer.Score),
		unaryHandler("Analyze", ScanServiceServer.Analyze),
		unaryHandler("SubmitScan", ScanServiceServer.SubmitScan),
		unaryHandler("GetScan", ScanServiceServer.GetScan),
		unaryHandler("ListScans", ScanServiceServer.ListScans),
		unaryHandler("GetMode", ScanServiceServer.GetMode),
		unaryHandler("SetMode", ScanServiceServer.SetMode),
		unaryHandler("ToggleMode", ScanServiceServer.ToggleMode),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterScanServiceServer(s grpc.ServiceRegistrar, srv ScanServiceServer) {
	s.RegisterService(&ScanServiceDesc, srv)
}

// ScanServiceClient calls pricetag.v1.ScanService methods by name.
type ScanServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewScanServiceClient(cc grpc.ClientConnInterface) *ScanServiceClient {
	return &ScanServiceClient{cc: cc}
}

// Call invokes method with a request built from fields.
func (c *ScanServiceClient) Call(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
