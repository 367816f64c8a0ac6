//go:build integration

// Package testutils provides shared test infrastructure for integration tests.
package testutils

import (
	"bytes"
	"context"
	"crypto/rand"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// GenerateTestData generates test data of the given size.
// For files <= 10MB, uses a deterministic pattern. For larger files, uses random data.
func GenerateTestData(t *testing.T, size int64) []byte {
	t.Helper()
	data := make([]byte, size)
	if size <= 10*1024*1024 {
		for i := range data {
			data[i] = byte(i % 256)
		}
	} else {
		if _, err := rand.Read(data); err != nil {
			t.Fatalf("generate random data: %v", err)
		}
	}
	return data
}

// NginxEnv contains connection information for an nginx test server
// running in a container.
type NginxEnv struct {
	Container testcontainers.Container
	Host      string
	Port      int
}

// Close terminates the nginx container.
func (e *NginxEnv) Close(ctx context.Context) error {
	if e.Container != nil {
		return e.Container.Terminate(ctx)
	}
	return nil
}

// StartNginxContainer starts an nginx container serving the given files
// from its document root. Keys are file names, values are file contents.
func StartNginxContainer(t *testing.T, ctx context.Context, files map[string][]byte) *NginxEnv {
	t.Helper()

	var containerFiles []testcontainers.ContainerFile
	for name, data := range files {
		containerFiles = append(containerFiles, testcontainers.ContainerFile{
			Reader:            bytes.NewReader(data),
			ContainerFilePath: "/usr/share/nginx/html/" + name,
			FileMode:          0o644,
		})
	}

	req := testcontainers.ContainerRequest{
		Image:        "nginx:alpine",
		ExposedPorts: []string{"80/tcp"},
		Files:        containerFiles,
		WaitingFor:   wait.ForHTTP("/").WithPort("80"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start nginx container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "80")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}

	return &NginxEnv{
		Container: container,
		Host:      host,
		Port:      port.Int(),
	}
}

// CompareData compares downloaded bytes with expected data and reports
// the first mismatching offset, which keeps failures on large files readable.
func CompareData(t *testing.T, got, expected []byte) {
	t.Helper()

	if len(got) != len(expected) {
		t.Fatalf("length mismatch: got %d bytes, want %d", len(got), len(expected))
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("data mismatch at offset %d: got %#x, want %#x", i, got[i], expected[i])
		}
	}
}
