// Package http implements the HTTP/1.0 transfer primitive used for
// ranged downloads.
//
// This package speaks the wire protocol directly over TCP rather than
// going through net/http: requests are HTTP/1.0, so the end of a
// response body is signalled by the server closing the connection and
// no chunked encoding or persistent connections are involved.
//
// This package handles:
//   - Resolving and connecting to host:port
//   - Writing GET and HEAD request lines and headers
//   - Reading a response until peer close into a growable Buffer
//   - Locating the header/body boundary
//
// # Usage
//
//	resp, err := http.Query(ctx, opts, "example.com", "index.html", "0-499", 80)
//	body := resp.Bytes()[http.BodyOffset(resp):]
//
// Byte ranges are advisory: a server may ignore the Range header and
// send the whole resource, so callers must check what came back rather
// than assume compliance.
package http
