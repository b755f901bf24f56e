package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestConsoleLoggerBroadcast(t *testing.T) {
	logger := NewConsoleLogger()

	first := logger.Subscribe()
	second := logger.Subscribe()
	defer logger.Unsubscribe(first)
	defer logger.Unsubscribe(second)

	if count := logger.SubscriberCount(); count != 2 {
		t.Fatalf("Expected 2 subscribers, got %d", count)
	}

	logger.Printf("rendered %d frames\n", 42)

	for name, ch := range map[string]chan ConsoleMessage{"first": first, "second": second} {
		select {
		case msg := <-ch:
			if msg.Message != "rendered 42 frames\n" {
				t.Errorf("%s subscriber: expected formatted message, got %q", name, msg.Message)
			}
			if msg.Level != "info" {
				t.Errorf("%s subscriber: expected level info, got %q", name, msg.Level)
			}
			if time.Since(msg.Timestamp) > time.Minute {
				t.Errorf("%s subscriber: timestamp not recent: %v", name, msg.Timestamp)
			}
		default:
			t.Errorf("%s subscriber received no message", name)
		}
	}
}

func TestConsoleLoggerUnsubscribe(t *testing.T) {
	logger := NewConsoleLogger()

	ch := logger.Subscribe()
	logger.Unsubscribe(ch)

	if count := logger.SubscriberCount(); count != 0 {
		t.Errorf("Expected 0 subscribers after unsubscribe, got %d", count)
	}

	logger.Printf("after unsubscribe\n")

	select {
	case msg := <-ch:
		t.Errorf("Unsubscribed channel received message %q", msg.Message)
	default:
	}
}

func TestConsoleLoggerDropsWhenSubscriberFull(t *testing.T) {
	logger := NewConsoleLogger()

	ch := logger.Subscribe()
	defer logger.Unsubscribe(ch)

	// More messages than the subscriber buffer holds. Printf must not
	// block on the full channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < cap(ch)+10; i++ {
			logger.Printf("message %d\n", i)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Printf blocked on a full subscriber channel")
	}

	if len(ch) != cap(ch) {
		t.Errorf("Expected full channel of %d messages, got %d", cap(ch), len(ch))
	}
}

// signalingRecorder closes wrote on the first body write, so tests can
// wait for the handler to emit something before cancelling its context.
type signalingRecorder struct {
	*httptest.ResponseRecorder
	wrote chan struct{}
	once  sync.Once
}

func (sr *signalingRecorder) Write(p []byte) (int, error) {
	sr.once.Do(func() { close(sr.wrote) })
	return sr.ResponseRecorder.Write(p)
}

func TestHandleConsoleStreamsMessages(t *testing.T) {
	srv := NewServer(8080)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest("GET", "/api/console", nil).WithContext(ctx)
	recorder := &signalingRecorder{
		ResponseRecorder: httptest.NewRecorder(),
		wrote:            make(chan struct{}),
	}

	handlerDone := make(chan struct{})
	go func() {
		defer close(handlerDone)
		srv.Handler().ServeHTTP(recorder, req)
	}()

	// Wait for the handler to subscribe before logging anything.
	deadline := time.Now().Add(2 * time.Second)
	for srv.logger.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Console handler never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	srv.logger.Printf("hello console\n")

	select {
	case <-recorder.wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("Console handler never wrote the message")
	}

	cancel()
	select {
	case <-handlerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Console handler did not stop on client disconnect")
	}

	body := recorder.Body.String()
	if !strings.Contains(body, "event: log") {
		t.Errorf("Expected a log event in stream, got %q", body)
	}
	if !strings.Contains(body, "hello console") {
		t.Errorf("Expected message text in stream, got %q", body)
	}
	if !strings.Contains(body, "data: {") {
		t.Errorf("Expected a JSON data line in stream, got %q", body)
	}

	if contentType := recorder.Header().Get("Content-Type"); contentType != "text/event-stream" {
		t.Errorf("Expected text/event-stream content type, got %q", contentType)
	}
}
