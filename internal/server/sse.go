package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// sseRetry is the reconnect delay suggested to EventSource clients.
const sseRetry = 3 * time.Second

// eventStream writes Server-Sent Events. Every event carries an increasing id
// so clients can tell a fresh stream from a resumed one.
type eventStream struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	buf *bufio.Writer
	seq uint64
}

// openEventStream sends the stream headers and the retry hint. Write
// deadlines are cleared since streams outlive the server's write timeout.
func openEventStream(w http.ResponseWriter) (*eventStream, error) {
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	es := &eventStream{w: w, rc: rc, buf: bufio.NewWriter(w)}
	fmt.Fprintf(es.buf, "retry: %d\n\n", sseRetry.Milliseconds())
	if err := es.flush(); err != nil {
		return nil, fmt.Errorf("streaming not supported: %w", err)
	}
	return es, nil
}

// send writes one event with a JSON payload.
func (es *eventStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	es.seq++
	fmt.Fprintf(es.buf, "id: %d\nevent: %s\ndata: %s\n\n", es.seq, event, payload)
	return es.flush()
}

// ping writes a comment line that keeps idle proxies from closing the stream.
func (es *eventStream) ping() error {
	es.buf.WriteString(": ping\n\n")
	return es.flush()
}

func (es *eventStream) flush() error {
	if err := es.buf.Flush(); err != nil {
		return err
	}
	return es.rc.Flush()
}
