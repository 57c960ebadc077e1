// Copyright 2026 Rapid SCADA Agent contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rpc

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// ContentSubtype is the gRPC content-subtype this module registers its
// codec under. grpc-go selects a wire codec per RPC by content-subtype,
// falling back to "proto" when none is given; every call in this module
// passes CallContentSubtype(ContentSubtype) so it always picks codec
// below instead of requiring protobuf-generated message types.
const ContentSubtype = "rscgob"

func init() {
	encoding.RegisterCodec(codec{})
}

// codec implements encoding.Codec over encoding/gob. gRPC's codec
// interface only ever sees the request/response values already declared
// in messages.go, so gob's reflection-based encoding is sufficient; there
// is no wire-compatibility requirement with any other language.
type codec struct{}

func (codec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("rpc: gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (codec) Unmarshal(data []byte, v interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("rpc: gob decode: %w", err)
	}
	return nil
}

func (codec) Name() string {
	return ContentSubtype
}
