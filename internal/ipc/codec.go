// ============================================================================
// Actor-Exec IPC - gob Wire Codec
// ============================================================================
//
// Package: internal/ipc
// File: codec.go
// Purpose: A grpc/encoding.Codec backed by encoding/gob, registered under
//          the content-subtype "gob". The teacher (internal/server,
//          internal/worker/grpc_source.go) transports protoc-generated
//          messages over grpc's default "proto" codec; that path needs
//          protoc, unavailable in this environment (see DESIGN.md). grpc
//          itself supports pluggable codecs for exactly this situation --
//          this is the same extension point vtprotobuf-style codecs use --
//          so the transport, multiplexing, and flow control stay real
//          google.golang.org/grpc, only the byte encoding changes.
//
// ============================================================================

package ipc

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"google.golang.org/grpc/encoding"
)

const codecName = "gob"

type gobCodec struct{}

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("ipc: gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("ipc: gob decode: %w", err)
	}
	return nil
}

func (gobCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(gobCodec{})
}

// CodecName is the content-subtype both the worker-process client and
// server dial options must agree on.
const CodecName = codecName
