package domain

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// SessionHeader carries the MCP session identifier on HTTP requests and responses.
const SessionHeader = "Mcp-Session-Id"

// StdioSessionID is the session every stdio message belongs to.
// A stdio process serves exactly one client.
const StdioSessionID = "stdio"

// Transport defines the interface for MCP transport mechanisms.
// Implementations read inbound messages, pass each to the handler and
// deliver the handler's response, if any, back to the client.
type Transport interface {
	// Start begins serving messages. It returns once the transport is
	// accepting input; serving continues in the background until ctx is
	// cancelled or Close is called.
	Start(ctx context.Context, handler MessageHandler) error

	// Done is closed when the transport stops serving.
	Done() <-chan struct{}

	// Close gracefully shuts down the transport.
	Close() error
}

// StdioTransport implements Transport using stdin/stdout for communication.
// It reads newline-delimited JSON-RPC messages and writes one response line
// per message that needs a response. Messages are handled in order.
type StdioTransport struct {
	reader *bufio.Reader
	writer *bufio.Writer
	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewStdioTransport creates a new StdioTransport on os.Stdin and os.Stdout.
func NewStdioTransport() *StdioTransport {
	return NewStdioTransportWithIO(os.Stdin, os.Stdout)
}

// NewStdioTransportWithIO creates a new StdioTransport with custom IO streams.
// This is primarily used for testing.
func NewStdioTransportWithIO(reader io.Reader, writer io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: bufio.NewReader(reader),
		writer: bufio.NewWriter(writer),
		done:   make(chan struct{}),
	}
}

// Start spawns the read loop.
func (t *StdioTransport) Start(ctx context.Context, handler MessageHandler) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	go t.readLoop(ctx, handler)
	return nil
}

// readLoop reads lines until EOF or cancellation and answers each one.
func (t *StdioTransport) readLoop(ctx context.Context, handler MessageHandler) {
	defer close(t.done)

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := t.reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)

		if len(line) > 0 {
			if response := handler.HandleMessage(ctx, StdioSessionID, line); response != nil {
				if sendErr := t.Send(response); sendErr != nil {
					return
				}
			}
		}

		if err != nil {
			// io.EOF or a broken pipe both end the session
			return
		}
	}
}

// Send writes a JSON-RPC response as a single line.
func (t *StdioTransport) Send(response *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport is closed")
	}

	if response.JSONRPC == "" {
		response.JSONRPC = JSONRPCVersion
	}

	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if _, err := t.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush response: %w", err)
	}

	return nil
}

// Done is closed when the read loop exits.
func (t *StdioTransport) Done() <-chan struct{} {
	return t.done
}

// Close gracefully shuts down the transport.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	return nil
}
