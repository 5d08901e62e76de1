package motion

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/panorama"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketRejectsWhenStopped(t *testing.T) {
	src := NewWebSocketSource(nil)
	srv := httptest.NewServer(src)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWebSocketDelivers(t *testing.T) {
	src := NewWebSocketSource(nil)
	srv := httptest.NewServer(src)
	defer srv.Close()

	var c collector
	require.NoError(t, src.Start(c.deliver))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return src.Connections() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"alpha":10,"beta":85,"gamma":2}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"quat":[1,2]}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"quat":[1,0,0,0],"frame":"render"}`)))

	require.Eventually(t, func() bool { return c.len() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, panorama.FrameRender, c.last().Frame)
	assert.Equal(t, Stats{Delivered: 2, Dropped: 1}, src.Stats())

	require.NoError(t, src.Stop())
	assert.Equal(t, 0, src.Connections())

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
