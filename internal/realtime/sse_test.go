package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var lines []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			return strings.Join(lines, "\n")
		}
		lines = append(lines, line)
	}
}

func TestServeStream_PingThenFramesThenCleanup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry(8, zap.NewNop())
	router := gin.New()
	router.GET("/stream/:projectId", func(c *gin.Context) {
		reg.ServeStream(c, c.Param("projectId"))
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream/P", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := bufio.NewReader(resp.Body)
	assert.Equal(t, "event: ping\ndata: ok", readEvent(t, body))
	require.True(t, reg.Has("P"))

	require.NoError(t, reg.Broadcast(context.Background(), "P", MessageCreated(testMessage("P", "hello"))))
	frame := readEvent(t, body)
	assert.True(t, strings.HasPrefix(frame, `data: {"type":"message.created","message":{`), frame)
	assert.Contains(t, frame, `"body":"hello"`)

	cancel()
	assert.Eventually(t, func() bool { return !reg.Has("P") }, 2*time.Second, 10*time.Millisecond)
}
