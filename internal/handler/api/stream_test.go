package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScalpPulse/internal/domain/models"
	"ScalpPulse/pkg/logger"
)

func newStreamServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	hub := NewHub(log)
	e := echo.New()
	e.GET("/ws/signals", hub.Stream)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialStream(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/signals"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestStreamDeliversBroadcast(t *testing.T) {
	hub, srv := newStreamServer(t)
	conn := dialStream(t, srv)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(&models.SignalLogEntry{
		Timestamp: time.Now().UTC(),
		Signal: models.TradeSignal{
			Ticker: "TSLA", SignalType: models.SignalLong,
			EntryPrice: 199, ConfidenceScore: 80,
		},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"ticker":"TSLA"`)
}

func TestHubCloseSendsCloseFrame(t *testing.T) {
	hub, srv := newStreamServer(t)
	conn := dialStream(t, srv)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr, "client sees a close frame, not a timeout")
	assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)

	assert.Equal(t, 0, hub.ClientCount())
}
