package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// Common errors.
var (
	ErrResolve = errors.New("http: host resolution failed")
	ErrConnect = errors.New("http: connection failed")
)

// Request methods supported by the transfer primitive.
const (
	MethodGet  = "GET"
	MethodHead = "HEAD"
)

// DefaultPort is the port used when a caller passes 0.
const DefaultPort = 80

// readChunkSize is the per-read buffer used by ReceiveResponse.
const readChunkSize = 1024

var headerTerminator = []byte("\r\n\r\n")

// Options configures the transfer primitive.
type Options struct {
	// DialTimeout bounds connection establishment.
	// Default: 10s
	DialTimeout time.Duration

	// IOTimeout bounds one whole request/response exchange on the
	// connection, applied as a deadline at the start of each exchange.
	// Default: 30s
	IOTimeout time.Duration

	// UserAgent is sent with every request.
	// Default: "getter"
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		DialTimeout: 10 * time.Second,
		IOTimeout:   30 * time.Second,
		UserAgent:   "getter",
	}
}

// WithDefaults fills any zero field of o with its default value.
func (o Options) WithDefaults() Options {
	def := DefaultOptions()
	if o.DialTimeout == 0 {
		o.DialTimeout = def.DialTimeout
	}
	if o.IOTimeout == 0 {
		o.IOTimeout = def.IOTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = def.UserAgent
	}
	return o
}

// Connect resolves host:port and establishes a TCP connection.
// Resolution failures are reported as ErrResolve, everything else as
// ErrConnect.
func (o Options) Connect(ctx context.Context, host string, port int) (net.Conn, error) {
	if port == 0 {
		port = DefaultPort
	}

	dialer := net.Dialer{Timeout: o.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return nil, fmt.Errorf("%w: %v", ErrResolve, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	return conn, nil
}

// SendRequest writes an HTTP/1.0 request for method (GET or HEAD) to
// conn. byteRange, when non-empty, is the literal text of a Range
// header value, e.g. "0-499". The range is advisory: a server is free
// to ignore it, so callers must verify the response instead of assuming
// compliance.
func (o Options) SendRequest(conn net.Conn, method, host, page, byteRange string) error {
	var req bytes.Buffer
	fmt.Fprintf(&req, "%s /%s HTTP/1.0\r\n", method, page)
	fmt.Fprintf(&req, "Host: %s\r\n", host)
	if byteRange != "" {
		fmt.Fprintf(&req, "Range: bytes=%s\r\n", byteRange)
	}
	fmt.Fprintf(&req, "User-Agent: %s\r\n\r\n", o.UserAgent)

	if _, err := conn.Write(req.Bytes()); err != nil {
		return fmt.Errorf("http: write request: %w", err)
	}
	return nil
}

// ReceiveResponse reads from conn until the peer closes the connection,
// which is how HTTP/1.0 marks the end of a response: no length field is
// needed for a full-body read. A zero-byte read or io.EOF terminates
// the loop successfully; any other read error fails the response.
func ReceiveResponse(conn net.Conn) (*Buffer, error) {
	resp := &Buffer{}
	chunk := make([]byte, readChunkSize)

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			resp.Append(chunk[:n])
		}
		if err == io.EOF {
			return resp, nil
		}
		if err != nil {
			return nil, fmt.Errorf("http: read response: %w", err)
		}
		if n == 0 {
			return resp, nil
		}
	}
}

// BodyOffset returns the offset of the first body byte in a response:
// the byte after the first "\r\n\r\n". When no terminator is present
// the offset is 0 and the whole payload is treated as body. The
// fallback is deliberate and load-bearing: a peer that sends no header
// section still delivered a payload, and offset 0 hands it back intact.
func BodyOffset(resp *Buffer) int {
	if i := bytes.Index(resp.Bytes(), headerTerminator); i >= 0 {
		return i + len(headerTerminator)
	}
	return 0
}

// StatusCode parses the three-digit status code from a response's
// status line, e.g. "HTTP/1.0 206 Partial Content".
func StatusCode(resp *Buffer) (int, error) {
	line := resp.Bytes()
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	fields := bytes.Fields(line)
	if len(fields) < 2 || !bytes.HasPrefix(fields[0], []byte("HTTP/")) {
		return 0, fmt.Errorf("http: malformed status line %q", string(line))
	}

	code, err := strconv.Atoi(string(fields[1]))
	if err != nil {
		return 0, fmt.Errorf("http: malformed status code %q", string(fields[1]))
	}
	return code, nil
}

// Query performs one GET exchange: connect, send the request, then read
// the response until the server closes the connection.
func Query(ctx context.Context, opts Options, host, page, byteRange string, port int) (*Buffer, error) {
	conn, err := opts.Connect(ctx, host, port)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if opts.IOTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(opts.IOTimeout)); err != nil {
			return nil, fmt.Errorf("http: set deadline: %w", err)
		}
	}

	if err := opts.SendRequest(conn, MethodGet, host, page, byteRange); err != nil {
		return nil, err
	}
	return ReceiveResponse(conn)
}

// SplitURL splits a schemeless URL of the form "host/page" into its
// host and page parts. A leading "http://" is tolerated and stripped.
func SplitURL(url string) (host, page string, err error) {
	url = strings.TrimPrefix(url, "http://")

	host, page, found := strings.Cut(url, "/")
	if !found || host == "" {
		return "", "", fmt.Errorf("http: could not split url into host/page: %q", url)
	}
	return host, page, nil
}
