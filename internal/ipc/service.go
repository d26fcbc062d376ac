// ============================================================================
// Actor-Exec IPC - Worker Exchange Service
// ============================================================================
//
// Package: internal/ipc
// File: service.go
// Purpose: Hand-authored grpc service stub for the bidirectional Call/Result
//          stream between the management task (client) and the spawned
//          worker process (server). Shaped exactly like protoc-gen-go-grpc
//          output -- ServiceDesc, a server interface, a client interface,
//          and the thin stream wrappers -- because there is no .proto/protoc
//          available to generate it (see DESIGN.md); the gob codec in
//          codec.go means no descriptor-driven marshaling is needed here.
//
// The worker process runs the server side (it owns the listening socket so
// the parent can dial it once it is ready); the management task's transport
// goroutines run the client side.
//
// ============================================================================

package ipc

import (
	"context"

	"google.golang.org/grpc"
)

const exchangeMethod = "/actorexec.ipc.Worker/Exchange"

// ServiceDesc describes the single bidirectional-streaming RPC this package
// exposes.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "actorexec.ipc.Worker",
	HandlerType: (*WorkerServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Exchange",
			Handler:       exchangeHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "internal/ipc/service.go",
}

// WorkerServer is implemented by the worker process.
type WorkerServer interface {
	Exchange(WorkerExchangeServer) error
}

// WorkerExchangeServer is the server's view of the stream: it receives
// CallEnvelopes and sends ResultEnvelopes.
type WorkerExchangeServer interface {
	Send(*ResultEnvelope) error
	Recv() (*CallEnvelope, error)
	grpc.ServerStream
}

type workerExchangeServer struct{ grpc.ServerStream }

func (x *workerExchangeServer) Send(m *ResultEnvelope) error {
	return x.ServerStream.SendMsg(m)
}

func (x *workerExchangeServer) Recv() (*CallEnvelope, error) {
	m := new(CallEnvelope)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func exchangeHandler(srv any, stream grpc.ServerStream) error {
	return srv.(WorkerServer).Exchange(&workerExchangeServer{ServerStream: stream})
}

// RegisterWorkerServer wires srv into s under the Exchange RPC.
func RegisterWorkerServer(s grpc.ServiceRegistrar, srv WorkerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// WorkerClient is implemented by the management task's transport goroutines.
type WorkerClient interface {
	Exchange(ctx context.Context, opts ...grpc.CallOption) (WorkerExchangeClient, error)
}

// WorkerExchangeClient is the client's view of the stream: it sends
// CallEnvelopes and receives ResultEnvelopes.
type WorkerExchangeClient interface {
	Send(*CallEnvelope) error
	Recv() (*ResultEnvelope, error)
	grpc.ClientStream
}

type workerClient struct {
	cc grpc.ClientConnInterface
}

// NewWorkerClient builds a WorkerClient over an established connection
// (typically dialed over a unix socket; see internal/processworker).
func NewWorkerClient(cc grpc.ClientConnInterface) WorkerClient {
	return &workerClient{cc: cc}
}

func (c *workerClient) Exchange(ctx context.Context, opts ...grpc.CallOption) (WorkerExchangeClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], exchangeMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &workerExchangeClient{ClientStream: stream}, nil
}

type workerExchangeClient struct{ grpc.ClientStream }

func (x *workerExchangeClient) Send(m *CallEnvelope) error {
	return x.ClientStream.SendMsg(m)
}

func (x *workerExchangeClient) Recv() (*ResultEnvelope, error) {
	m := new(ResultEnvelope)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
