package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// Request represents an IPC request.
type Request struct {
	Method    string          `json:"method"`
	Container string          `json:"container,omitempty"`
	Format    string          `json:"format,omitempty"`
	Selection json.RawMessage `json:"selection,omitempty"`
}

// Response represents an IPC response.
type Response struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn wraps a Unix socket connection with framed JSON.
type Conn struct {
	conn net.Conn
	rw   *bufio.ReadWriter
}

// Dial connects to a Unix socket.
func Dial(socketPath string) (*Conn, error) {
	c, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, err
	}
	return NewConn(c), nil
}

// NewConn wraps an established connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{conn: c, rw: bufio.NewReadWriter(bufio.NewReader(c), bufio.NewWriter(c))}
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// SendRequest writes a framed JSON request.
func (c *Conn) SendRequest(req Request) error {
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if _, err := c.rw.Write(append(b, '\n')); err != nil {
		return err
	}
	return c.rw.Flush()
}

// ReadResponse reads one framed JSON response.
func (c *Conn) ReadResponse(resp *Response) error {
	line, err := c.rw.ReadBytes('\n')
	if err != nil {
		return err
	}
	if err := json.Unmarshal(line, resp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Call sends req and decodes the response data into out.
// A response with ok=false is returned as an error.
func (c *Conn) Call(req Request, out interface{}) error {
	if err := c.SendRequest(req); err != nil {
		return err
	}
	var resp Response
	if err := c.ReadResponse(&resp); err != nil {
		return err
	}
	if !resp.OK {
		return errors.New(resp.Error)
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Data, out)
}
