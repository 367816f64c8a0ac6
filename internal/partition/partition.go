package partition

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	getterhttp "github.com/rekanorman/getter/internal/http"
)

// ErrMissingContentLength indicates a HEAD response without a usable
// Content-Length header. This is fatal for a download: no ranges can be
// computed without the total size.
var ErrMissingContentLength = errors.New("partition: response has no Content-Length header")

const contentLengthPrefix = "Content-Length:"

// Task describes one ranged GET and where its payload belongs in the
// assembled resource. Start and End are inclusive byte positions;
// Offset is the destination position in the output buffer.
type Task struct {
	Host   string
	Page   string
	Port   int
	Start  int64
	End    int64
	Offset int64
}

// Length returns the number of payload bytes the task covers.
func (t Task) Length() int64 {
	return t.End - t.Start + 1
}

// Range returns the textual byte range sent in the Range header.
func (t Task) Range() string {
	return fmt.Sprintf("%d-%d", t.Start, t.End)
}

// ContentLength discovers the total size of host/page with a HEAD
// request. HEAD responses have no body, so the whole exchange is a
// header-sized read.
func ContentLength(ctx context.Context, opts getterhttp.Options, host, page string, port int) (int64, error) {
	conn, err := opts.Connect(ctx, host, port)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if opts.IOTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(opts.IOTimeout)); err != nil {
			return 0, fmt.Errorf("partition: set deadline: %w", err)
		}
	}

	if err := opts.SendRequest(conn, getterhttp.MethodHead, host, page, ""); err != nil {
		return 0, err
	}

	resp, err := getterhttp.ReceiveResponse(conn)
	if err != nil {
		return 0, err
	}

	return parseContentLength(resp.String())
}

// parseContentLength scans header lines for the literal
// "Content-Length:" prefix and parses the decimal value after it.
func parseContentLength(header string) (int64, error) {
	for _, line := range strings.Split(header, "\r\n") {
		if !strings.HasPrefix(line, contentLengthPrefix) {
			continue
		}

		value := strings.TrimSpace(line[len(contentLengthPrefix):])
		length, err := strconv.ParseInt(value, 10, 64)
		if err != nil || length < 0 {
			return 0, fmt.Errorf("%w: bad value %q", ErrMissingContentLength, value)
		}
		return length, nil
	}
	return 0, ErrMissingContentLength
}

// Ranges splits contentLength bytes of host/page into contiguous tasks
// of ceil(contentLength/workerCount) bytes each. The ranges are
// pairwise disjoint and cover [0, contentLength) exactly; the final
// task absorbs the remainder and may be shorter than the rest. Fewer
// than workerCount tasks are produced when the resource is smaller than
// the worker count, and a zero contentLength yields no tasks at all.
func Ranges(host, page string, port int, contentLength int64, workerCount int) []Task {
	if contentLength <= 0 || workerCount <= 0 {
		return nil
	}

	chunk := (contentLength + int64(workerCount) - 1) / int64(workerCount)

	tasks := make([]Task, 0, workerCount)
	for start := int64(0); start < contentLength; start += chunk {
		end := start + chunk - 1
		if end > contentLength-1 {
			end = contentLength - 1
		}
		tasks = append(tasks, Task{
			Host:   host,
			Page:   page,
			Port:   port,
			Start:  start,
			End:    end,
			Offset: start,
		})
	}
	return tasks
}
