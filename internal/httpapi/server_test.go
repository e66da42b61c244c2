package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"modelgw/internal/backend"
	"modelgw/internal/gateway"
	"modelgw/internal/queue"
	"modelgw/internal/registry"
	"modelgw/pkg/types"
)

func newTestServer(t *testing.T, be backend.Backend, defs ...types.InstanceDef) (*httptest.Server, *gateway.Gateway) {
	t.Helper()
	reg := registry.New()
	if len(defs) > 0 {
		reg.Initialize(defs)
	}
	g := gateway.New(reg, queue.NewMemoryStore(), be, zerolog.Nop(), gateway.Config{
		TickInterval: 5 * time.Millisecond,
		RequeueDelay: 5 * time.Millisecond,
		RetryBackoff: time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
	t.Cleanup(g.StopAll)
	srv := httptest.NewServer(NewMux(g))
	t.Cleanup(srv.Close)
	return srv, g
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestEnqueueAndLongPollResult(t *testing.T) {
	stub := &backend.Stub{Response: json.RawMessage(`{"text":"hi"}`)}
	srv, g := newTestServer(t, stub, types.InstanceDef{ModelID: "m", Endpoint: "http://a", MaxLoad: 1})
	g.StartModel("m")

	resp := postJSON(t, srv.URL+"/requests", types.EnqueueRequest{
		ModelID: "m",
		Payload: json.RawMessage(`{"prompt":"hello"}`),
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	enq := decodeBody[types.EnqueueResponse](t, resp)
	if enq.RequestID == "" {
		t.Fatalf("expected a request id")
	}

	resp2, err := http.Get(fmt.Sprintf("%s/requests/%s/result?wait_ms=2000", srv.URL, enq.RequestID))
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp2.StatusCode)
	}
	result := decodeBody[types.GatewayResponse](t, resp2)
	if !result.Success || string(result.Data) != `{"text":"hi"}` {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestEnqueueRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, &backend.Stub{})

	// Missing model id.
	resp := postJSON(t, srv.URL+"/requests", types.EnqueueRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing model, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Wrong content type.
	resp2, err := http.Post(srv.URL+"/requests", "text/plain", strings.NewReader("nope"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp2.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp2.StatusCode)
	}
	resp2.Body.Close()

	// Malformed JSON.
	resp3, err := http.Post(srv.URL+"/requests", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp3.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", resp3.StatusCode)
	}
	errBody := decodeBody[types.ErrorResponse](t, resp3)
	if errBody.Code != http.StatusBadRequest || errBody.Error == "" {
		t.Fatalf("unexpected error payload %+v", errBody)
	}
}

func TestResultNotReadyAndBadWaitMs(t *testing.T) {
	srv, _ := newTestServer(t, &backend.Stub{})

	resp, err := http.Get(srv.URL + "/requests/absent/result")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing result, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp2, err := http.Get(srv.URL + "/requests/absent/result?wait_ms=abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp2.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad wait_ms, got %d", resp2.StatusCode)
	}
	resp2.Body.Close()
}

func TestInstanceEndpoints(t *testing.T) {
	srv, g := newTestServer(t, &backend.Stub{},
		types.InstanceDef{ModelID: "m1", Endpoint: "http://a", MaxLoad: 1},
		types.InstanceDef{ModelID: "m2", Endpoint: "http://b", MaxLoad: 2},
	)

	resp, err := http.Get(srv.URL + "/instances")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	all := decodeBody[map[string][]types.ModelInstance](t, resp)
	if len(all["instances"]) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(all["instances"]))
	}

	resp2, err := http.Get(srv.URL + "/models/m1/instances")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	byModel := decodeBody[map[string][]types.ModelInstance](t, resp2)
	if len(byModel["instances"]) != 1 || byModel["instances"][0].ModelID != "m1" {
		t.Fatalf("unexpected per-model listing %+v", byModel)
	}

	id := g.ListInstancesByModel("m1")[0].ID
	resp3 := postJSON(t, srv.URL+"/instances/"+id+"/stop", nil)
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for stop, got %d", resp3.StatusCode)
	}
	resp3.Body.Close()
	if inst := g.ListInstancesByModel("m1")[0]; inst.Status != types.StatusOffline {
		t.Fatalf("expected offline after stop, got %s", inst.Status)
	}

	resp4 := postJSON(t, srv.URL+"/instances/nope/start", nil)
	if resp4.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown instance, got %d", resp4.StatusCode)
	}
	resp4.Body.Close()

	resp5 := postJSON(t, srv.URL+"/instances/reset-manual", nil)
	if resp5.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for reset, got %d", resp5.StatusCode)
	}
	resp5.Body.Close()
	if g.ListInstancesByModel("m1")[0].ManuallyControlled {
		t.Fatalf("expected manual control cleared")
	}
}

func TestQueueAndStatusEndpoints(t *testing.T) {
	srv, g := newTestServer(t, &backend.Stub{},
		types.InstanceDef{ModelID: "m", Endpoint: "http://a", MaxLoad: 1})
	g.StartModel("m")

	resp, err := http.Get(srv.URL + "/models/m/queue")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	qs := decodeBody[types.QueueStatus](t, resp)
	if qs.Length != 0 {
		t.Fatalf("expected empty queue, got %d", qs.Length)
	}

	resp2, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	st := decodeBody[types.StatusResponse](t, resp2)
	if len(st.Instances) != 1 || len(st.ActiveModels) != 1 {
		t.Fatalf("unexpected status %+v", st)
	}

	resp3, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 healthz, got %d", resp3.StatusCode)
	}
	resp3.Body.Close()

	resp4, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp4.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", resp4.StatusCode)
	}
	resp4.Body.Close()
}
