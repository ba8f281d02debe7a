//go:build integration
// +build integration

package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	wsmsg "github.com/gokatarajesh/coupsurcoup/pkg/http/ws"
)

type seatInfo struct {
	RoomCode string `json:"room_code"`
	Token    string `json:"token"`
	Player   struct {
		ID     string `json:"id"`
		IsHost bool   `json:"is_host"`
	} `json:"player"`
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func baseURLs(t *testing.T) (string, string) {
	t.Helper()
	baseHTTP := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	baseWS := envOrDefault("INTEGRATION_WS_URL", "ws://localhost:8080/ws/games")

	resp, err := http.Get(baseHTTP + "/healthz")
	if err != nil {
		t.Skipf("api unavailable at %s: %v", baseHTTP, err)
	}
	resp.Body.Close()
	return baseHTTP, baseWS
}

func doJSON(t *testing.T, method, target, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	req, err := http.NewRequest(method, target, &body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	defer resp.Body.Close()

	out := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func createRoom(t *testing.T, baseURL, hostName string) seatInfo {
	t.Helper()
	return takeSeat(t, http.MethodPost, fmt.Sprintf("%s/v1/rooms", baseURL), map[string]interface{}{
		"host_name": hostName,
	}, http.StatusCreated)
}

func joinRoom(t *testing.T, baseURL, code, name string) seatInfo {
	t.Helper()
	return takeSeat(t, http.MethodPost, fmt.Sprintf("%s/v1/rooms/%s/join", baseURL, code), map[string]interface{}{
		"display_name": name,
	}, http.StatusOK)
}

func takeSeat(t *testing.T, method, target string, payload interface{}, want int) seatInfo {
	t.Helper()

	raw, _ := json.Marshal(payload)
	resp, err := http.Post(target, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("expected %d, got %d, error: %v", want, resp.StatusCode, errResp)
	}

	var seat seatInfo
	if err := json.NewDecoder(resp.Body).Decode(&seat); err != nil {
		t.Fatalf("decode seat response failed: %v", err)
	}
	if seat.Token == "" {
		t.Fatalf("empty session token in seat response")
	}
	return seat
}

func dialGameWS(t *testing.T, wsBase, token string) *websocket.Conn {
	t.Helper()

	u, err := url.Parse(wsBase)
	if err != nil {
		t.Fatalf("invalid WS url: %v", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()

	msg, err := wsmsg.NewMessage(msgType, payload)
	if err != nil {
		t.Fatalf("encode %s: %v", msgType, err)
	}
	conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("failed to send %s: %v", msgType, err)
	}
}

// waitFor reads frames until match accepts one or the timeout passes.
func waitFor(t *testing.T, conn *websocket.Conn, timeout time.Duration, match func(wsmsg.Message) bool) wsmsg.Message {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		var msg wsmsg.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read ws message failed: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
	t.Fatalf("timeout waiting for ws message")
	return wsmsg.Message{}
}
