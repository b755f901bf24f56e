package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
)

// ConsoleMessage is one log line forwarded to web consoles.
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
}

// ConsoleLogger mirrors every server log line to all subscribed web
// consoles. A slow subscriber drops messages rather than stall a render.
type ConsoleLogger struct {
	mu          sync.Mutex
	subscribers map[chan ConsoleMessage]struct{}
}

var _ core.Logger = (*ConsoleLogger)(nil)

// NewConsoleLogger creates a broadcaster with no subscribers.
func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{
		subscribers: make(map[chan ConsoleMessage]struct{}),
	}
}

// Printf implements core.Logger. Messages go to stdout and to every
// subscribed console stream.
func (cl *ConsoleLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Print(message)

	msg := ConsoleMessage{
		Message:   message,
		Timestamp: time.Now(),
		Level:     "info",
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	for subscriber := range cl.subscribers {
		select {
		case subscriber <- msg:
		default:
			// Subscriber buffer full, drop the message
		}
	}
}

// Subscribe registers a new console stream. The returned channel receives
// every subsequent message until Unsubscribe is called.
func (cl *ConsoleLogger) Subscribe() chan ConsoleMessage {
	ch := make(chan ConsoleMessage, 50)
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a console stream registered with Subscribe.
func (cl *ConsoleLogger) Unsubscribe(ch chan ConsoleMessage) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	delete(cl.subscribers, ch)
}

// SubscriberCount returns the number of attached console streams.
func (cl *ConsoleLogger) SubscriberCount() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.subscribers)
}

// handleConsole streams server log messages to the client as SSE events.
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	ctx := r.Context()

	messages := s.logger.Subscribe()
	defer s.logger.Unsubscribe(messages)

	flusher, canFlush := w.(http.Flusher)

	for {
		select {
		case msg := <-messages:
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: log\ndata: %s\n\n", data); err != nil {
				return
			}
			if canFlush {
				flusher.Flush()
			}
		case <-ctx.Done():
			return
		}
	}
}
