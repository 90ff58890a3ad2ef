package realtime

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServeStream holds an SSE response open for projectID until the client goes
// away or the registry is closed. Authentication happens before this call.
func (r *Registry) ServeStream(c *gin.Context, projectID string) {
	sub := r.Subscribe(projectID)
	defer r.Unsubscribe(sub)

	w := c.Writer
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, "event: ping\ndata: ok\n\n"); err != nil {
		return
	}
	w.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-sub.C():
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
				return
			}
			w.Flush()
		}
	}
}
