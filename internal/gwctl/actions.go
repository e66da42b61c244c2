package gwctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"modelgw/pkg/types"
)

// client wraps HTTP access to a running gateway.
type client struct {
	base string
	hc   *http.Client
}

func newClient(cfg *Config) *client {
	return &client{
		base: strings.TrimRight(cfg.Server, "/"),
		hc:   &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *client) get(path string) ([]byte, int, error) {
	debug("GET %s%s", c.base, path)
	resp, err := c.hc.Get(c.base + path)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return b, resp.StatusCode, err
}

func (c *client) post(path string, body any) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		rd = bytes.NewReader(b)
	}
	debug("POST %s%s", c.base, path)
	resp, err := c.hc.Post(c.base+path, "application/json", rd)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return b, resp.StatusCode, err
}

// printJSON re-indents a JSON payload to stdout for human consumption.
func printJSON(b []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		os.Stdout.Write(b)
		fmt.Println()
		return
	}
	fmt.Println(buf.String())
}

func apiError(status int, body []byte) error {
	var er types.ErrorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		return fmt.Errorf("server returned %d: %s", status, er.Error)
	}
	return fmt.Errorf("server returned %d: %s", status, strings.TrimSpace(string(body)))
}

func fnEnqueue(cfg *Config, req types.EnqueueRequest, waitMs int) error {
	c := newClient(cfg)
	body, status, err := c.post("/requests", req)
	if err != nil {
		return err
	}
	if status != http.StatusAccepted {
		return apiError(status, body)
	}
	var enq types.EnqueueResponse
	if err := json.Unmarshal(body, &enq); err != nil {
		return fmt.Errorf("decode enqueue response: %w", err)
	}
	if waitMs <= 0 {
		printJSON(body)
		return nil
	}
	info("request %s accepted, waiting up to %dms", enq.RequestID, waitMs)
	return fnResult(cfg, enq.RequestID, waitMs)
}

func fnResult(cfg *Config, requestID string, waitMs int) error {
	c := newClient(cfg)
	path := fmt.Sprintf("/requests/%s/result", requestID)
	if waitMs > 0 {
		path += fmt.Sprintf("?wait_ms=%d", waitMs)
	}
	body, status, err := c.get(path)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("result for %s not ready", requestID)
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}
	printJSON(body)
	return nil
}

func fnStatus(cfg *Config) error {
	c := newClient(cfg)
	body, status, err := c.get("/status")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}
	printJSON(body)
	return nil
}

func fnQueue(cfg *Config, model string) error {
	c := newClient(cfg)
	body, status, err := c.get("/models/" + model + "/queue")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}
	printJSON(body)
	return nil
}

func fnInstances(cfg *Config, model string) error {
	c := newClient(cfg)
	path := "/instances"
	if model != "" {
		path = "/models/" + model + "/instances"
	}
	body, status, err := c.get(path)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}
	printJSON(body)
	return nil
}

func fnInstanceStart(cfg *Config, id string) error {
	c := newClient(cfg)
	body, status, err := c.post("/instances/"+id+"/start", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}
	info("instance %s started", id)
	return nil
}

func fnInstanceStop(cfg *Config, id string) error {
	c := newClient(cfg)
	body, status, err := c.post("/instances/"+id+"/stop", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}
	info("instance %s stopped", id)
	return nil
}

func fnResetManual(cfg *Config) error {
	c := newClient(cfg)
	body, status, err := c.post("/instances/reset-manual", nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return apiError(status, body)
	}
	info("manual control cleared")
	return nil
}
