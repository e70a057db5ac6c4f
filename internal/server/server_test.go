package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourusername/coin-chaos/internal/protocol"
)

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	srv := New(testPassword, fastTuning())
	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.game.Shutdown()
		httpSrv.Close()
	})
	return srv, "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeMessage(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, payload interface{}) {
	t.Helper()
	data, err := protocol.EncodeMessage(msgType, payload)
	if err != nil {
		t.Fatalf("encode %s: %v", msgType, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) *protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	msg, err := protocol.DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return msg
}

func TestWebSocketJoinFlow(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dial(t, wsURL)

	writeMessage(t, conn, protocol.MsgJoin, protocol.JoinPayload{Name: "Ann", Password: testPassword})

	// The server answers with the confirmation, the join notification
	// and the first state frame, in that order.
	msg := readMessage(t, conn)
	if msg.Type != protocol.MsgJoinOK {
		t.Fatalf("first message = %s, want %s", msg.Type, protocol.MsgJoinOK)
	}
	var ok protocol.JoinOKPayload
	mustUnmarshal(t, msg.Payload, &ok)
	if ok.Role != protocol.RoleHost || ok.PlayerID == "" {
		t.Fatalf("join_ok = %+v, want host with an id", ok)
	}

	if msg = readMessage(t, conn); msg.Type != protocol.MsgSystem {
		t.Fatalf("second message = %s, want %s", msg.Type, protocol.MsgSystem)
	}

	msg = readMessage(t, conn)
	if msg.Type != protocol.MsgState {
		t.Fatalf("third message = %s, want %s", msg.Type, protocol.MsgState)
	}
	var state protocol.StatePayload
	mustUnmarshal(t, msg.Payload, &state)
	if len(state.Players) != 1 || state.Players[0].Name != "Ann" {
		t.Fatalf("state players = %+v, want just Ann", state.Players)
	}
	if state.Phase != protocol.PhaseLobby {
		t.Fatalf("phase = %s, want %s", state.Phase, protocol.PhaseLobby)
	}
}

func TestWebSocketWrongPasswordAllowsRetry(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dial(t, wsURL)

	writeMessage(t, conn, protocol.MsgJoin, protocol.JoinPayload{Name: "Ann", Password: "wrong"})

	msg := readMessage(t, conn)
	if msg.Type != protocol.MsgJoinRejected {
		t.Fatalf("got %s, want %s", msg.Type, protocol.MsgJoinRejected)
	}
	var rejected protocol.JoinRejectedPayload
	mustUnmarshal(t, msg.Payload, &rejected)
	if rejected.Reason != protocol.ReasonWrongPassword {
		t.Fatalf("reason = %s, want %s", rejected.Reason, protocol.ReasonWrongPassword)
	}

	// Same connection, correct password: the retry succeeds.
	writeMessage(t, conn, protocol.MsgJoin, protocol.JoinPayload{Name: "Ann", Password: testPassword})
	if msg = readMessage(t, conn); msg.Type != protocol.MsgJoinOK {
		t.Fatalf("retry got %s, want %s", msg.Type, protocol.MsgJoinOK)
	}
}

func TestWebSocketTooManyFailedJoinsDropsConnection(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dial(t, wsURL)

	for i := 0; i < 2; i++ {
		writeMessage(t, conn, protocol.MsgJoin, protocol.JoinPayload{Name: "Ann", Password: "wrong"})
		msg := readMessage(t, conn)
		if msg.Type != protocol.MsgJoinRejected {
			t.Fatalf("attempt %d got %s, want %s", i+1, msg.Type, protocol.MsgJoinRejected)
		}
	}

	// The third failure is one too many; the server closes.
	writeMessage(t, conn, protocol.MsgJoin, protocol.JoinPayload{Name: "Ann", Password: "wrong"})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestWebSocketMessageBeforeJoinIsProtocolError(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dial(t, wsURL)

	writeMessage(t, conn, protocol.MsgMove, protocol.MovePayload{DX: 1, DY: 1})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection survived a pre-join move message")
	}
}

func TestHealthAndDiagnosticsEndpoints(t *testing.T) {
	srv := New(testPassword, fastTuning())
	defer srv.game.Shutdown()
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	resp, err := http.Get(httpSrv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("health body = %q, want ok", body)
	}

	resp, err = http.Get(httpSrv.URL + "/diagnostics")
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("diagnostics content type = %q", ct)
	}
}
