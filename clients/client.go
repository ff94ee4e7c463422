// Package clients talks to a daemon over the socket protocol.
package clients

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/reusee/taibf/schemes"
	"github.com/reusee/taibf/sessions"
	"github.com/reusee/taibf/wires"
)

// Client is safe for concurrent use. Requests are served in order.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

func Dial(ctx context.Context, dialer Dialer, network, addr string) (*Client, error) {
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s:%s: %w", network, addr, err)
	}
	return New(conn), nil
}

func New(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}
}

func (c *Client) roundTrip(req wires.Request) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := wires.WriteRequest(c.w, req); err != nil {
		return nil, err
	}
	if err := c.w.Flush(); err != nil {
		return nil, err
	}
	res, err := wires.ReadResponse(c.r)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Payload, nil
}

func (c *Client) Root() (schemes.HandleID, error) {
	payload, err := c.roundTrip(wires.Request{
		Op: wires.OpRoot,
	})
	if err != nil {
		return 0, err
	}
	return wires.DecodeHandle(payload)
}

// Open starts source through dir, which must be the root handle.
func (c *Client) Open(dir schemes.HandleID, source string) (schemes.HandleID, error) {
	payload, err := c.roundTrip(wires.Request{
		Op:      wires.OpOpen,
		Handle:  dir,
		Payload: []byte(source),
	})
	if err != nil {
		return 0, err
	}
	return wires.DecodeHandle(payload)
}

// Read does not block. It returns an error matching schemes.ErrWouldBlock
// when no output is ready, and (0, nil) at end of stream.
func (c *Client) Read(id schemes.HandleID, buf []byte) (int, error) {
	payload, err := c.roundTrip(wires.Request{
		Op:     wires.OpRead,
		Handle: id,
		N:      uint32(min(len(buf), wires.MaxPayload)),
	})
	if err != nil {
		return 0, err
	}
	return copy(buf, payload), nil
}

// Write sends buf in frames of at most wires.MaxPayload bytes and stops at
// the first frame not fully accepted.
func (c *Client) Write(id schemes.HandleID, buf []byte) (int, error) {
	total := 0
	for len(buf) > 0 {
		chunk := buf[:min(len(buf), wires.MaxPayload)]
		payload, err := c.roundTrip(wires.Request{
			Op:      wires.OpWrite,
			Handle:  id,
			Payload: chunk,
		})
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
		n, err := wires.DecodeCount(payload)
		if err != nil {
			return total, err
		}
		total += n
		if n < len(chunk) {
			break
		}
		buf = buf[n:]
	}
	return total, nil
}

func (c *Client) CloseHandle(id schemes.HandleID) error {
	_, err := c.roundTrip(wires.Request{
		Op:     wires.OpClose,
		Handle: id,
	})
	return err
}

// CloseInput ends the program input of id.
func (c *Client) CloseInput(id schemes.HandleID) error {
	_, err := c.roundTrip(wires.Request{
		Op:     wires.OpCloseInput,
		Handle: id,
	})
	return err
}

func (c *Client) Stat(id schemes.HandleID) (stat sessions.Stat, err error) {
	payload, err := c.roundTrip(wires.Request{
		Op:     wires.OpStat,
		Handle: id,
	})
	if err != nil {
		return stat, err
	}
	if err := json.Unmarshal(payload, &stat); err != nil {
		return stat, err
	}
	return stat, nil
}

// Close ends the connection. The daemon closes every handle opened on it.
func (c *Client) Close() error {
	return c.conn.Close()
}
