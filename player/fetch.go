package player

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/media"
	"github.com/vibe-audio/vibe/resolver"
	"golang.org/x/net/html"
)

// fetch makes src available as a local file and returns its path.
func fetch(ctx context.Context, opts Options, src media.Source) (string, error) {
	if !isRemote(src.URL) {
		if exists, _ := filesystem.API().Exists(src.URL); !exists {
			return "", fmt.Errorf("no such file: %s", src.URL)
		}
		return src.URL, nil
	}

	drive := resolver.IsCloudDrive(src.URL)
	if !drive {
		if path, ok := opts.Cache.Lookup(cacheKey(src)); ok {
			log.Debugf("media: cache hit for %s", src.URL)
			return path, nil
		}
	}

	start := time.Now()
	resp, err := get(ctx, opts, src.URL, src.Analysable)
	if err != nil {
		return "", err
	}

	if drive && isHTML(resp) {
		next, err := confirmLink(resp, src.URL)
		resp.Body.Close()
		if err != nil {
			return "", err
		}

		log.Debugf("media: following download confirmation to %s", next)
		resp, err = get(ctx, opts, next, src.Analysable)
		if err != nil {
			return "", err
		}
		if isHTML(resp) {
			resp.Body.Close()
			return "", fmt.Errorf("cloud drive returned a page instead of audio")
		}
	}
	defer resp.Body.Close()

	path, err := opts.Cache.Store(cacheKey(src), resp.Body)
	if err != nil {
		return "", err
	}

	opts.Metrics.ObserveDownload(time.Since(start))
	return path, nil
}

// cacheKey keeps files whose cross-origin grant was checked apart from those
// fetched without one, so an analysable load never reuses an unchecked file.
func cacheKey(src media.Source) string {
	if src.Analysable {
		return "analysable " + src.URL
	}
	return src.URL
}

func isRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

func isHTML(resp *http.Response) bool {
	return strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html")
}

// get issues the request and enforces the cross-origin grant for analysable loads.
func get(ctx context.Context, opts Options, target string, analysable bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if analysable {
		req.Header.Set("Origin", opts.Origin)
	}

	resp, err := opts.Client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if analysable {
		granted := resp.Header.Get("Access-Control-Allow-Origin")
		if granted != "*" && granted != opts.Origin {
			resp.Body.Close()
			return nil, media.ErrCrossOrigin
		}
	}

	return resp, nil
}

// confirmLink extracts the real download link from a cloud drive "can't scan this file" page.
func confirmLink(resp *http.Response, from string) (string, error) {
	base, err := url.Parse(from)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}

		if n.Type == html.ElementNode {
			switch {
			case n.Data == "form" && attr(n, "id") == "download-form":
				action, err := base.Parse(attr(n, "action"))
				if err == nil {
					q := action.Query()
					collectInputs(n, q)
					action.RawQuery = q.Encode()
					found = action.String()
					return
				}
			case n.Data == "a" && strings.Contains(attr(n, "href"), "confirm="):
				href, err := base.Parse(attr(n, "href"))
				if err == nil {
					found = href.String()
					return
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if found == "" {
		return "", fmt.Errorf("no download link on confirmation page")
	}
	return found, nil
}

func collectInputs(n *html.Node, q url.Values) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "input" {
			if name := attr(c, "name"); name != "" {
				q.Set(name, attr(c, "value"))
			}
		}
		collectInputs(c, q)
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
