package script

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vibe-audio/vibe/filesystem"
)

// Install downloads remoteURL into localPath. The file is replaced through a
// temporary sibling and rename, and only when its content changed.
// It reports whether localPath was written.
func Install(ctx context.Context, client *http.Client, remoteURL, localPath string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return false, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("fetch %s: unexpected status %s", remoteURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	fs := filesystem.API()
	if local, err := fs.ReadFile(localPath); err == nil && sha256.Sum256(local) == sha256.Sum256(body) {
		return false, nil
	}

	tmp := localPath + ".tmp"
	if err := fs.WriteFile(tmp, body, 0o644); err != nil {
		return false, err
	}

	if err := fs.Rename(tmp, localPath); err != nil {
		_ = fs.Remove(tmp)
		return false, err
	}

	Forget(localPath)
	return true, nil
}
