package tictacv1

import (
	"fmt"

	json "github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype the service messages travel under
// (application/grpc+json).
const CodecName = "json"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec marshals service messages as JSON.
type Codec struct{}

// Marshal encodes v.
func (Codec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("tictacv1: marshal %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal decodes data into v.
func (Codec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("tictacv1: unmarshal %T: %w", v, err)
	}
	return nil
}

// Name returns CodecName.
func (Codec) Name() string { return CodecName }
