package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinivoice/callflow/internal/callflow"
	"github.com/clinivoice/callflow/internal/http/handlers"
	"github.com/clinivoice/callflow/pkg/logging"
)

type noopEngine struct{}

func (noopEngine) Turn(context.Context, callflow.TurnInput) (callflow.Response, error) {
	return callflow.Response{NextPhase: callflow.PhaseWaitForID, Action: callflow.SetState(nil)}, nil
}

func TestRouterRoutes(t *testing.T) {
	h := New(&Config{
		Logger:       logging.New("error"),
		CallWebhooks: handlers.NewCallWebhookHandler(noopEngine{}, logging.New("error")),
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	body := bytes.NewReader([]byte(`{"call_id":"call-1","text":"hello"}`))
	resp, err = http.Post(srv.URL+"/webhooks/call", "application/json", body)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/webhooks/call")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	_ = resp.Body.Close()
}
