package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialStream(t *testing.T, h http.Handler, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/evaluate"
	return websocket.DefaultDialer.Dial(url, header)
}

func readFrame(t *testing.T, conn *websocket.Conn) streamResponse {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp streamResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	return resp
}

func TestStream_ScoresEachFrame(t *testing.T) {
	conn, _, err := dialStream(t, newTestServer(testConfig(), nil), nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	// partial transcript first, as a user would while typing
	frames := []map[string]any{
		{"request_id": "1", "transcript": "Hello, my name is Asha.", "duration_seconds": 60},
		{"request_id": "2", "transcript": ashaIntro, "duration_seconds": 60},
	}
	var scores []float64
	for _, f := range frames {
		if err := conn.WriteJSON(f); err != nil {
			t.Fatalf("Failed to write frame: %v", err)
		}
		resp := readFrame(t, conn)
		if resp.Type != "result" || resp.Data == nil {
			t.Fatalf("Expected result frame, got %+v", resp)
		}
		if resp.RequestID != f["request_id"] {
			t.Errorf("Expected request id %v, got %q", f["request_id"], resp.RequestID)
		}
		scores = append(scores, resp.Data.OverallScore)
	}

	if scores[1] != 68 {
		t.Errorf("Expected full introduction to score 68, got %v", scores[1])
	}
	if scores[0] >= scores[1] {
		t.Errorf("Expected partial transcript to score lower, got %v and %v", scores[0], scores[1])
	}
}

func TestStream_ErrorFrames(t *testing.T) {
	conn, _, err := dialStream(t, newTestServer(testConfig(), nil), nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	conn.WriteJSON(map[string]any{"request_id": "blank", "transcript": "  ", "duration_seconds": 60})
	resp := readFrame(t, conn)
	if resp.Type != "error" || resp.RequestID != "blank" || resp.Error == "" {
		t.Errorf("Expected error frame for blank transcript, got %+v", resp)
	}

	conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	if resp := readFrame(t, conn); resp.Type != "error" {
		t.Errorf("Expected error frame for malformed JSON, got %+v", resp)
	}

	conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3})
	if resp := readFrame(t, conn); resp.Type != "error" {
		t.Errorf("Expected error frame for binary message, got %+v", resp)
	}

	// connection stays usable after errors
	conn.WriteJSON(map[string]any{"transcript": ashaIntro})
	if resp := readFrame(t, conn); resp.Type != "result" {
		t.Errorf("Expected result after errors, got %+v", resp)
	}
}

func TestStream_OriginCheck(t *testing.T) {
	cfg := testConfig()
	cfg.CORSAllowedOrigins = []string{"https://app.example.com"}
	h := newTestServer(cfg, nil)

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	if _, resp, err := dialStream(t, h, header); err == nil {
		t.Error("Expected handshake from a foreign origin to fail")
	} else if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}

	header = http.Header{"Origin": []string{"https://app.example.com"}}
	conn, _, err := dialStream(t, h, header)
	if err != nil {
		t.Fatalf("Expected allowed origin to connect, got %v", err)
	}
	conn.Close()
}
