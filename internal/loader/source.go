package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Source opens a data resource by its convention path.
type Source interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// DirSource reads resources below a local root directory.
type DirSource struct {
	Root string
}

func (s DirSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.Root, filepath.FromSlash(path)))
}

// HTTPSource fetches resources relative to a base URL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (s HTTPSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimRight(s.BaseURL, "/") + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

// NewSource picks an HTTP source when baseURL is set, else a directory source.
func NewSource(root, baseURL string) Source {
	if baseURL != "" {
		return HTTPSource{BaseURL: baseURL}
	}
	return DirSource{Root: root}
}
