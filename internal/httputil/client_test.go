package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestPostJSON_Success(t *testing.T) {
	t.Parallel()
	mock := NewMockHTTPClient().AddResponse(http.StatusOK, `{"order":[2,1,0]}`)

	var out struct {
		Order []int `json:"order"`
	}
	err := PostJSON(context.Background(), mock, "http://ranker/api/rank", map[string]int{"n": 3}, &out)
	if err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if len(out.Order) != 3 || out.Order[0] != 2 {
		t.Errorf("decoded order = %v", out.Order)
	}

	if mock.RequestCount() != 1 {
		t.Fatalf("expected 1 request, got %d", mock.RequestCount())
	}
	req := mock.Requests[0]
	if req.Method != http.MethodPost || req.URL.Path != "/api/rank" {
		t.Errorf("unexpected request %s %s", req.Method, req.URL)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %s", ct)
	}
	var sent map[string]int
	if err := json.Unmarshal(mock.Bodies[0], &sent); err != nil || sent["n"] != 3 {
		t.Errorf("request body = %s (%v)", mock.Bodies[0], err)
	}
}

func TestPostJSON_ServerError(t *testing.T) {
	t.Parallel()
	mock := NewMockHTTPClient().
		AddResponse(http.StatusBadRequest, `{"error":"topsis: dimension mismatch"}`).
		AddResponse(http.StatusBadGateway, `<html>bad gateway</html>`)

	err := PostJSON(context.Background(), mock, "http://ranker/api/rank", struct{}{}, nil)
	if err == nil || !strings.Contains(err.Error(), "400: topsis: dimension mismatch") {
		t.Errorf("expected server message in error, got %v", err)
	}

	err = PostJSON(context.Background(), mock, "http://ranker/api/rank", struct{}{}, nil)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestPostJSON_TransportError(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection refused")
	mock := NewMockHTTPClient().AddErrorResponse(boom)

	err := PostJSON(context.Background(), mock, "http://ranker/api/rank", struct{}{}, nil)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
}

func TestPostJSON_BadResponseJSON(t *testing.T) {
	t.Parallel()
	mock := NewMockHTTPClient().AddResponse(http.StatusOK, `not json`)

	var out map[string]interface{}
	err := PostJSON(context.Background(), mock, "http://ranker/api/rank", struct{}{}, &out)
	if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestMockHTTPClient_DefaultResponse(t *testing.T) {
	t.Parallel()
	mock := NewMockHTTPClient()
	req, _ := http.NewRequest(http.MethodGet, "http://ranker/api/version", nil)
	resp, err := mock.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
