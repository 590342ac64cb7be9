// Package network provides the shared HTTP clients for catalog and media traffic.
package network

import (
	"net/http"
	"time"

	"github.com/vibe-audio/vibe/key"
	"github.com/spf13/viper"
)

// Client is used for catalog and other small JSON requests.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

// Media streams chapter audio. It carries no overall timeout since a chapter
// download may legitimately take longer than any fixed bound; callers cancel through the request context.
var Media = &http.Client{
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 16
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

// Configure applies network settings read after config setup.
// With network.fingerprint enabled both clients present a browser TLS fingerprint.
func Configure() {
	if viper.GetBool(key.NetworkFingerprint) {
		Client.Transport = NewFingerprintTransport()
		Media.Transport = NewFingerprintTransport()
		return
	}

	Client.Transport = newTransport()
	Media.Transport = newTransport()
}
