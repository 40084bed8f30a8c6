package preview

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"

	"github.com/joshvictor1024/go-fractal/pkg/fractal"
)

func testFrame(r, g, b uint8) *fractal.Buffer {
	buf := fractal.NewBuffer(4, 3)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			buf.SetPixel(x, y, buf.Format.MapRGB(r, g, b))
		}
	}
	return buf
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return c
}

func readFrame(t *testing.T, c *websocket.Conn) color.Color {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	typ, data, err := c.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageBinary, typ)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 4, img.Bounds().Dx())
	require.Equal(t, 3, img.Bounds().Dy())
	return color.RGBAModel.Convert(img.At(1, 1))
}

func TestWebsocketReceivesPublishedFrames(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := dial(t, srv)
	require.Eventually(t, func() bool { return s.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	s.Publish(testFrame(10, 20, 30))
	require.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 0xFF}, readFrame(t, c))

	s.Publish(testFrame(1, 2, 3))
	require.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 0xFF}, readFrame(t, c))
}

func TestLateClientGetsLatestFrame(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	s.Publish(testFrame(200, 100, 50))

	c := dial(t, srv)
	require.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 0xFF}, readFrame(t, c))
}

func TestClientDisconnectUnsubscribes(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := dial(t, srv)
	require.Eventually(t, func() bool { return s.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return s.Subscribers() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestCloseDisconnectsClients(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := dial(t, srv)
	require.Eventually(t, func() bool { return s.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	s.Close()
	require.Equal(t, 0, s.Subscribers())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := c.Read(ctx)
	require.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}

func TestFrameEndpoint(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/frame.png")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	s.Publish(testFrame(5, 6, 7))

	resp, err = http.Get(srv.URL + "/frame.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, color.RGBA{R: 5, G: 6, B: 7, A: 0xFF}, color.RGBAModel.Convert(img.At(0, 0)))
}

func TestSubscriberKeepsNewestFrame(t *testing.T) {
	sub := newSubscriber()
	sub.trySend([]byte("old"))
	sub.trySend([]byte("new"))

	require.Equal(t, []byte("new"), <-sub.ch)

	sub.close()
	sub.close()
	sub.trySend([]byte("after close"))
	_, ok := <-sub.ch
	require.False(t, ok)
}
