package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tejusbharadwaj/availability/internal/models"
)

// Messages travel as google.protobuf.Struct whose JSON form is RequestBody
// on the way in and models.Response on the way out.

// DecodeRequestBody reads a request message. Unknown fields are rejected.
func DecodeRequestBody(msg *structpb.Struct) (*RequestBody, error) {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var body RequestBody
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("malformed request: %v", err)
	}
	return &body, nil
}

// EncodeRequestBody builds the request message for a body.
func EncodeRequestBody(body *RequestBody) (*structpb.Struct, error) {
	return toStruct(body)
}

// EncodeResponse builds the response message.
func EncodeResponse(resp *models.Response) (*structpb.Struct, error) {
	return toStruct(resp)
}

// DecodeResponse reads a response message.
func DecodeResponse(msg *structpb.Struct) (*models.Response, error) {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	var resp models.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	msg := &structpb.Struct{}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return msg, nil
}
