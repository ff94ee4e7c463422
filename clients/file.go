package clients

import (
	"errors"
	"io"
	"time"

	"github.com/reusee/taibf/schemes"
)

const (
	minPollInterval = time.Millisecond
	maxPollInterval = time.Millisecond * 50
)

// File is a blocking view of a handle. Read polls until output is ready.
type File struct {
	client *Client
	id     schemes.HandleID
}

var _ io.ReadWriteCloser = new(File)

func (c *Client) File(id schemes.HandleID) *File {
	return &File{
		client: c,
		id:     id,
	}
}

// OpenFile opens source through the root handle.
func (c *Client) OpenFile(source string) (*File, error) {
	root, err := c.Root()
	if err != nil {
		return nil, err
	}
	id, err := c.Open(root, source)
	if err != nil {
		return nil, err
	}
	return c.File(id), nil
}

func (f *File) Handle() schemes.HandleID {
	return f.id
}

func (f *File) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	interval := minPollInterval
	for {
		n, err := f.client.Read(f.id, p)
		if errors.Is(err, schemes.ErrWouldBlock) {
			time.Sleep(interval)
			interval = min(interval*2, maxPollInterval)
			continue
		}
		if err != nil {
			return n, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (f *File) Write(p []byte) (int, error) {
	n, err := f.client.Write(f.id, p)
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// CloseWrite ends program input. Reads continue until the program stops.
func (f *File) CloseWrite() error {
	return f.client.CloseInput(f.id)
}

func (f *File) Close() error {
	return f.client.CloseHandle(f.id)
}
