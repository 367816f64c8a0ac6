package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

func TestBodyOffset(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     int
		wantBody string
	}{
		{
			name:     "header and body",
			response: "HTTP/1.1 200 OK\r\nA: B\r\n\r\nHELLO",
			want:     25,
			wantBody: "HELLO",
		},
		{
			name:     "empty body",
			response: "HTTP/1.0 200 OK\r\n\r\n",
			want:     19,
			wantBody: "",
		},
		{
			// Documented fallback: no terminator means the whole
			// payload is treated as body, not an error.
			name:     "no terminator",
			response: "raw bytes with no header section",
			want:     0,
			wantBody: "raw bytes with no header section",
		},
		{
			name:     "empty response",
			response: "",
			want:     0,
			wantBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp Buffer
			resp.Append([]byte(tt.response))

			got := BodyOffset(&resp)
			if got != tt.want {
				t.Fatalf("BodyOffset = %d, want %d", got, tt.want)
			}
			if body := string(resp.Bytes()[got:]); body != tt.wantBody {
				t.Fatalf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	var resp Buffer
	resp.Append([]byte("HTTP/1.0 206 Partial Content\r\nContent-Length: 5\r\n\r\nHELLO"))

	code, err := StatusCode(&resp)
	if err != nil {
		t.Fatalf("StatusCode: %v", err)
	}
	if code != 206 {
		t.Fatalf("StatusCode = %d, want 206", code)
	}

	var bad Buffer
	bad.Append([]byte("not an http response at all"))
	if _, err := StatusCode(&bad); err == nil {
		t.Fatal("expected error for malformed status line")
	}
}

func TestSendRequest(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		byteRange string
		want      string
	}{
		{
			name:      "ranged GET",
			method:    MethodGet,
			byteRange: "0-499",
			want:      "GET /index.html HTTP/1.0\r\nHost: example.com\r\nRange: bytes=0-499\r\nUser-Agent: getter\r\n\r\n",
		},
		{
			name:   "HEAD without range",
			method: MethodHead,
			want:   "HEAD /index.html HTTP/1.0\r\nHost: example.com\r\nUser-Agent: getter\r\n\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := net.Pipe()
			defer client.Close()
			defer server.Close()

			received := make(chan []byte, 1)
			go func() {
				buf := make([]byte, 4096)
				n, _ := server.Read(buf)
				received <- buf[:n]
			}()

			opts := DefaultOptions()
			if err := opts.SendRequest(client, tt.method, "example.com", "index.html", tt.byteRange); err != nil {
				t.Fatalf("SendRequest: %v", err)
			}

			if got := string(<-received); got != tt.want {
				t.Fatalf("request = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReceiveResponse(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	chunks := [][]byte{
		[]byte("HTTP/1.0 200 OK\r\n\r\n"),
		bytes.Repeat([]byte("x"), 1),
		bytes.Repeat([]byte("y"), 100),
		bytes.Repeat([]byte("z"), 10000),
	}

	go func() {
		for _, c := range chunks {
			server.Write(c)
		}
		server.Close() // HTTP/1.0: close marks end of body
	}()

	resp, err := ReceiveResponse(client)
	if err != nil {
		t.Fatalf("ReceiveResponse: %v", err)
	}

	want := bytes.Join(chunks, nil)
	if !bytes.Equal(resp.Bytes(), want) {
		t.Fatalf("response length %d, want %d", resp.Len(), len(want))
	}
	if resp.Cap() < resp.Len() {
		t.Fatalf("Cap=%d < Len=%d", resp.Cap(), resp.Len())
	}
}

func TestReceiveResponseReadError(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	// Closing our own end makes the next read fail with something
	// other than EOF.
	client.Close()

	if _, err := ReceiveResponse(client); err == nil {
		t.Fatal("expected a read error")
	}
}

// startRawServer runs a minimal one-connection HTTP/1.0 server and
// returns its host and port. The handler receives the raw request text
// and returns the raw response; the connection is closed right after.
func startRawServer(t *testing.T, handler func(request string) string) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				buf := make([]byte, 4096)
				var request []byte
				for !bytes.Contains(request, []byte("\r\n\r\n")) {
					n, err := conn.Read(buf)
					if err != nil {
						return
					}
					request = append(request, buf[:n]...)
				}
				conn.Write([]byte(handler(string(request))))
			}(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func TestQuery(t *testing.T) {
	var gotRequest string
	host, port := startRawServer(t, func(request string) string {
		gotRequest = request
		return "HTTP/1.0 206 Partial Content\r\nContent-Length: 5\r\n\r\nHELLO"
	})

	resp, err := Query(context.Background(), DefaultOptions(), host, "data.bin", "0-4", port)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if !strings.HasPrefix(gotRequest, "GET /data.bin HTTP/1.0\r\n") {
		t.Fatalf("request line wrong: %q", gotRequest)
	}
	if !strings.Contains(gotRequest, "Range: bytes=0-4\r\n") {
		t.Fatalf("request missing range header: %q", gotRequest)
	}

	body := resp.Bytes()[BodyOffset(resp):]
	if string(body) != "HELLO" {
		t.Fatalf("body = %q, want HELLO", body)
	}
}

func TestQueryIOTimeout(t *testing.T) {
	// A server that accepts but never responds: the connection
	// deadline has to cut the read loop short.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(io.Discard, conn)
	}()

	opts := DefaultOptions()
	opts.IOTimeout = 100 * time.Millisecond

	addr := ln.Addr().(*net.TCPAddr)
	start := time.Now()
	_, err = Query(context.Background(), opts, "127.0.0.1", "slow", "", addr.Port)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Query took %v, deadline not applied", elapsed)
	}
}

func TestConnectRefused(t *testing.T) {
	// Grab a port that nothing is listening on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	_, err = DefaultOptions().Connect(context.Background(), "127.0.0.1", port)
	if !errors.Is(err, ErrConnect) {
		t.Fatalf("Connect error = %v, want ErrConnect", err)
	}
}

func TestSplitURL(t *testing.T) {
	tests := []struct {
		url      string
		wantHost string
		wantPage string
		wantErr  bool
	}{
		{url: "example.com/index.html", wantHost: "example.com", wantPage: "index.html"},
		{url: "http://example.com/a/b.bin", wantHost: "example.com", wantPage: "a/b.bin"},
		{url: "example.com/", wantHost: "example.com", wantPage: ""},
		{url: "no-slash", wantErr: true},
		{url: "/only-page", wantErr: true},
	}

	for _, tt := range tests {
		host, page, err := SplitURL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SplitURL(%q): expected error", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("SplitURL(%q): %v", tt.url, err)
			continue
		}
		if host != tt.wantHost || page != tt.wantPage {
			t.Errorf("SplitURL(%q) = %q, %q; want %q, %q", tt.url, host, page, tt.wantHost, tt.wantPage)
		}
	}
}
