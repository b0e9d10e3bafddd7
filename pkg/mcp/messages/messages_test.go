package messages_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/smallcloudai/mcp-client-go/pkg/mcp/messages"
)

func TestRequestRoundTrip(t *testing.T) {
	req, err := messages.NewRequest(
		messages.NewIntID(7),
		"tools/call",
		map[string]any{"name": "add", "arguments": map[string]any{"a": 1.0}},
	)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded messages.Request
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded.JSONRPC != messages.Version {
		t.Errorf("jsonrpc = %q, want %q", decoded.JSONRPC, messages.Version)
	}
	if decoded.ID != messages.NewIntID(7) {
		t.Errorf("id = %v, want 7", decoded.ID)
	}
	if decoded.Method != "tools/call" {
		t.Errorf("method = %q, want tools/call", decoded.Method)
	}

	var origParams, decodedParams any
	if err := json.Unmarshal(req.Params, &origParams); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(decoded.Params, &decodedParams); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(origParams, decodedParams) {
		t.Errorf("params changed across round trip: %v != %v", origParams, decodedParams)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{
			"success",
			`{"jsonrpc":"2.0","id":3,"result":{"tools":[{"name":"add"}]}}`,
		},
		{
			"error",
			`{"jsonrpc":"2.0","id":"req-9","error":{"code":-32601,"message":"method not found","data":{"method":"nope"}}}`,
		},
		{
			"null result",
			`{"jsonrpc":"2.0","id":4,"result":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp messages.Response
			if err := json.Unmarshal([]byte(tt.frame), &resp); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			data, err := json.Marshal(&resp)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var orig, again any
			if err := json.Unmarshal([]byte(tt.frame), &orig); err != nil {
				t.Fatal(err)
			}
			if err := json.Unmarshal(data, &again); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(orig, again) {
				t.Errorf("round trip changed value:\n  in:  %s\n  out: %s", tt.frame, data)
			}
		})
	}
}

func TestNotificationRoundTrip(t *testing.T) {
	n, err := messages.NewNotification(
		"notifications/progress",
		map[string]any{"progressToken": "tok", "progress": 0.5},
	)
	if err != nil {
		t.Fatalf("NewNotification() error = %v", err)
	}

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded messages.Notification
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Method != n.Method {
		t.Errorf("method = %q, want %q", decoded.Method, n.Method)
	}
}

func TestRequestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    messages.RequestID
		wantErr bool
	}{
		{"integer", `42`, messages.NewIntID(42), false},
		{"string", `"req-1"`, messages.NewStringID("req-1"), false},
		{"negative integer", `-3`, messages.NewIntID(-3), false},
		{"fractional number", `1.5`, messages.RequestID{}, true},
		{"boolean", `true`, messages.RequestID{}, true},
		{"object", `{"a":1}`, messages.RequestID{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id messages.RequestID
			err := json.Unmarshal([]byte(tt.input), &id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && id != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, id, tt.want)
			}
		})
	}
}

func TestRequestIDsAreMapKeys(t *testing.T) {
	m := map[messages.RequestID]string{
		messages.NewIntID(1):        "one",
		messages.NewStringID("one"): "string one",
	}
	if m[messages.NewIntID(1)] != "one" {
		t.Error("integer id lookup failed")
	}
	if m[messages.NewStringID("one")] != "string one" {
		t.Error("string id lookup failed")
	}
	// A numeric id and a string id never collide.
	if len(m) != 2 {
		t.Errorf("map has %d entries, want 2", len(m))
	}
}

func TestDecodeClassification(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		want    messages.Kind
		wantErr bool
	}{
		{
			"response with result",
			`{"jsonrpc":"2.0","id":1,"result":{}}`,
			messages.KindResponse, false,
		},
		{
			"response with error",
			`{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"bad"}}`,
			messages.KindResponse, false,
		},
		{
			"notification",
			`{"jsonrpc":"2.0","method":"notifications/progress","params":{}}`,
			messages.KindNotification, false,
		},
		{
			"server request",
			`{"jsonrpc":"2.0","id":5,"method":"sampling/createMessage"}`,
			messages.KindRequest, false,
		},
		{"garbage", `not json at all`, 0, true},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"result":{}}`, 0, true},
		{"result and error", `{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":1,"message":"x"}}`, 0, true},
		{"neither result nor error", `{"jsonrpc":"2.0","id":1}`, 0, true},
		{"response without id", `{"jsonrpc":"2.0","result":{}}`, 0, true},
		{"fractional id", `{"jsonrpc":"2.0","id":1.25,"result":{}}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := messages.Decode([]byte(tt.frame))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := env.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}
