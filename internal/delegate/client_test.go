package delegate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinivoice/callflow/internal/callflow"
	"github.com/clinivoice/callflow/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.New("error")
}

func TestClientCallSuccess(t *testing.T) {
	var received wireRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"ok": true, "body": "12345678", "check_digit": "5"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "clinic-sanmartin", time.Second, testLogger())
	res := c.Call(context.Background(), callflow.DelegateRequest{
		Name:       callflow.DelegateFormatID,
		SessionID:  "call-1",
		Transcript: "one two three",
		Confidence: 0.87,
		Language:   "en",
		Payload:    map[string]any{"text": "one two three"},
	})

	assert.True(t, res.OK)
	assert.Equal(t, "12345678", res.Str("body"))
	assert.Equal(t, "5", res.Str("check_digit"))

	assert.Equal(t, "delegate_call", received.Event)
	assert.Equal(t, callflow.DelegateFormatID, received.Action)
	assert.Equal(t, "clinic-sanmartin", received.Domain)
	assert.Equal(t, "call-1", received.CallID)
	assert.Equal(t, "one two three", received.Text)
	assert.InDelta(t, 0.87, received.Confidence, 1e-9)
}

func TestClientCallUnwrapsOutputEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"output": "{\"ok\": true, \"found\": true, \"patient_name\": \"Maria\"}"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "clinic", time.Second, testLogger())
	res := c.Call(context.Background(), callflow.DelegateRequest{Name: callflow.DelegateValidatePatient})

	assert.True(t, res.OK)
	assert.True(t, res.Bool("found"))
	assert.Equal(t, "Maria", res.Str("patient_name"))
}

func TestClientCallNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "clinic", time.Second, testLogger())
	res := c.Call(context.Background(), callflow.DelegateRequest{Name: callflow.DelegateFormatID})

	assert.False(t, res.OK)
	assert.Nil(t, res.Data)
}

func TestClientCallUnparsableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "clinic", time.Second, testLogger())
	res := c.Call(context.Background(), callflow.DelegateRequest{Name: callflow.DelegateFormatID})

	assert.False(t, res.OK)
}

func TestClientCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "clinic", time.Second, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := c.Call(ctx, callflow.DelegateRequest{Name: callflow.DelegateGetNextAvailability})

	assert.False(t, res.OK)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClientCallUnreachableEndpoint(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "clinic", 200*time.Millisecond, testLogger())
	res := c.Call(context.Background(), callflow.DelegateRequest{Name: callflow.DelegateFormatID})
	assert.False(t, res.OK)
}

func TestDecodeResultPassthrough(t *testing.T) {
	fields, err := decodeResult([]byte(`{"ok": true, "slot_id": "s1"}`))
	require.NoError(t, err)
	assert.Equal(t, "s1", fields["slot_id"])
}

func TestDecodeResultBadEnvelope(t *testing.T) {
	_, err := decodeResult([]byte(`{"output": "not json"}`))
	assert.Error(t, err)
}
