// Package codec implements the wire format used between chunksink and a
// remote store coordinator: gob-encoded request/response frames, with row
// payloads compressed via lz4.
package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/chunksink/chunksink"
	"github.com/pierrec/lz4"
)

func init() {
	// concrete row value types carried inside [][]interface{}
	gob.Register(time.Time{})
	gob.Register([]byte{})
	gob.Register(int8(0))
	gob.Register(int16(0))
	gob.Register(int32(0))
	gob.Register(int64(0))
	gob.Register(uint8(0))
	gob.Register(uint16(0))
	gob.Register(uint32(0))
	gob.Register(uint64(0))
	gob.Register(float32(0))
	gob.Register(float64(0))
	gob.Register("")
	gob.Register(false)
}

// RequestKind tags a coordinator request frame
type RequestKind uint8

const (
	// KindIngest is a row-batch delivery request
	KindIngest RequestKind = iota
	// KindTruncate is a truncate request
	KindTruncate
	// KindFlush is a flush request
	KindFlush
)

// Request is a single coordinator request frame
type Request struct {
	Kind           RequestKind
	Ref            chunksink.DatasetRef
	Version        int
	ColumnNames    []string
	PartitionIndex int
	Rows           [][]interface{}
}

// ResponseStatus is the closed set of coordinator response variants
type ResponseStatus uint8

const (
	// StatusAck acknowledges an ingest or truncate request
	StatusAck ResponseStatus = iota
	// StatusFlushed acknowledges a flush request
	StatusFlushed
	// StatusError carries a coordinator-side failure
	StatusError
	// StatusUnknown is any response the coordinator could not classify
	StatusUnknown
)

// Response is a single coordinator response frame
type Response struct {
	Status ResponseStatus
	Error  string
}

// EncodeRequest serializes and compresses a request frame
func EncodeRequest(req *Request) ([]byte, error) {
	buff := new(bytes.Buffer)
	compressor := lz4.NewWriter(buff)
	if err := gob.NewEncoder(compressor).Encode(req); err != nil {
		return nil, fmt.Errorf("Unable to encode request: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// DecodeRequest decompresses and deserializes a request frame
func DecodeRequest(data []byte) (*Request, error) {
	decompressor := lz4.NewReader(bytes.NewReader(data))
	var req Request
	if err := gob.NewDecoder(decompressor).Decode(&req); err != nil {
		return nil, fmt.Errorf("Unable to decode request: %w", err)
	}
	return &req, nil
}

// EncodeResponse serializes a response frame. Responses are small and are
// not compressed.
func EncodeResponse(res *Response) ([]byte, error) {
	buff := new(bytes.Buffer)
	if err := gob.NewEncoder(buff).Encode(res); err != nil {
		return nil, fmt.Errorf("Unable to encode response: %w", err)
	}
	return buff.Bytes(), nil
}

// DecodeResponse deserializes a response frame
func DecodeResponse(data []byte) (*Response, error) {
	var res Response
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&res); err != nil {
		return nil, fmt.Errorf("Unable to decode response: %w", err)
	}
	return &res, nil
}
