package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/util"
)

// Fetch loads the catalog from src, an http(s) URL or a local path.
// token, when set, is sent as a bearer token to http sources.
func Fetch(ctx context.Context, client *http.Client, src, token string) (*Library, error) {
	var (
		body io.ReadCloser
		err  error
	)

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		body, err = get(ctx, client, src, token)
	} else {
		body, err = filesystem.API().Open(src)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", src, err)
	}
	defer util.Ignore(body.Close)

	books, err := Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", src, err)
	}

	log.Infof("catalog %s: %d books", src, len(books))
	return NewLibrary(books), nil
}

// Decode reads a JSON array of books.
func Decode(r io.Reader) ([]*Book, error) {
	var books []*Book
	if err := json.NewDecoder(r).Decode(&books); err != nil {
		return nil, err
	}

	for i, b := range books {
		if b == nil {
			return nil, fmt.Errorf("book %d is null", i)
		}
	}
	return books, nil
}

func get(ctx context.Context, client *http.Client, url, token string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return resp.Body, nil
}
