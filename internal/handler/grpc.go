// internal/handler/grpc.go
package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/SyedDaiam9101/classifier-service/internal/classifier"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "classifier.v1.Classifier"
	// PredictMethod is the full method name of the Predict RPC.
	PredictMethod = "/" + ServiceName + "/Predict"
)

// ClassifierServer is the gRPC surface of the classifier. Messages are
// google.protobuf.Struct values shaped like the HTTP JSON bodies.
type ClassifierServer interface {
	Predict(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ClassifierServiceDesc describes the Classifier service for grpc.Server.
var ClassifierServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClassifierServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Predict",
			Handler:    predictHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "classifier/v1/classifier.proto",
}

func predictHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClassifierServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PredictMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClassifierServer).Predict(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterClassifierServer registers srv on s.
func RegisterClassifierServer(s grpc.ServiceRegistrar, srv ClassifierServer) {
	s.RegisterService(&ClassifierServiceDesc, srv)
}

// GRPC adapts Handler to ClassifierServer.
type GRPC struct {
	h *Handler
}

// GRPC returns the gRPC adapter for h.
func (h *Handler) GRPC() *GRPC {
	return &GRPC{h: h}
}

// Predict handles classifier.v1.Classifier/Predict.
func (g *GRPC) Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var raw interface{}
	if req != nil {
		if v, ok := req.GetFields()[classifier.FeaturesField]; ok {
			raw = v.AsInterface()
		}
	}

	pred, err := g.h.svc.PredictPayload(ctx, raw)
	if err != nil {
		return nil, grpcError(err)
	}

	resp, err := structpb.NewStruct(map[string]interface{}{"prediction": pred.Label})
	if err != nil {
		return nil, grpcError(err)
	}
	return resp, nil
}

var _ ClassifierServer = (*GRPC)(nil)
