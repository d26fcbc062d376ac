package ipc

import (
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Listen opens the unix-domain socket the worker process serves the
// Exchange RPC on. Any stale socket file from a previous run at the same
// path is removed first.
func Listen(socketPath string) (net.Listener, error) {
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ipc: removing stale socket: %w", err)
	}
	lis, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen on %s: %w", socketPath, err)
	}
	return lis, nil
}

// DialSocket connects the management task's transport goroutines to a
// worker process's Exchange socket. The connection always uses the gob
// codec registered in codec.go and plaintext transport credentials: both
// ends are local processes owned by the same user, so TLS buys nothing
// here.
func DialSocket(socketPath string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("ipc: dial %s: %w", socketPath, err)
	}
	return conn, nil
}
