package server

import (
	"bufio"
	"net"
	"sync"

	"github.com/eternalApril/starlight/internal/resp"
)

// Peer represents a connected client. It accumulates raw reads until a
// complete RESP frame parses, and writes replies at the protocol version
// the client negotiated via HELLO.
type Peer struct {
	conn      net.Conn
	out       *bufio.Writer
	sink      *resp.SliceSink
	writer    *resp.Writer
	mu        sync.Mutex
	inbuf     []byte
	readChunk int
}

// NewPeer initializes a new client peer from a network connection.
// Clients start on RESP2 until HELLO upgrades them.
func NewPeer(conn net.Conn, readChunk int) *Peer {
	sink := resp.NewSliceSink(readChunk)
	return &Peer{
		conn:      conn,
		out:       bufio.NewWriter(conn),
		sink:      sink,
		writer:    resp.NewWriter(sink, resp.RESP2),
		readChunk: readChunk,
	}
}

// SetProtocol switches the version replies are encoded at.
func (p *Peer) SetProtocol(v resp.Version) {
	p.mu.Lock()
	p.writer.SetVersion(v)
	p.mu.Unlock()
}

// ReadCommand reads from the connection until one complete frame is
// available and returns it preserved, so the read buffer can be reused.
func (p *Peer) ReadCommand() (resp.Value, error) {
	for {
		if len(p.inbuf) > 0 {
			v, consumed, ok, err := resp.TryParse(resp.BytesSequence(p.inbuf))
			if err != nil {
				return resp.Value{}, err
			}
			if ok {
				v = v.Preserve()
				p.inbuf = append(p.inbuf[:0], p.inbuf[consumed:]...)
				return v, nil
			}
		}

		chunk := make([]byte, p.readChunk)
		n, err := p.conn.Read(chunk)
		if n > 0 {
			p.inbuf = append(p.inbuf, chunk[:n]...)
			continue
		}
		if err != nil {
			return resp.Value{}, err
		}
	}
}

// Send encodes and writes a RESP value to the client.
// This method is thread-safe and can be called from multiple goroutines
func (p *Peer) Send(v resp.Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink.Reset()
	if err := p.writer.Write(v); err != nil {
		return err
	}
	p.writer.Complete()
	_, err := p.out.Write(p.sink.Bytes())
	return err
}

// Flush sends all buffered data to the client
func (p *Peer) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Flush()
}

// InputBuffered returns the number of bytes waiting in the parse buffer
func (p *Peer) InputBuffered() int {
	return len(p.inbuf)
}

// Close terminates the underlying network connection
func (p *Peer) Close() error {
	return p.conn.Close()
}
