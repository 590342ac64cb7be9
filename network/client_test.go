package network

import (
	"net/http"
	"testing"

	"github.com/vibe-audio/vibe/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestConfigure(t *testing.T) {
	Convey("Given the network settings", t, func() {
		Reset(func() {
			viper.Set(key.NetworkFingerprint, false)
			Configure()
		})

		Convey("Fingerprinting swaps both transports", func() {
			viper.Set(key.NetworkFingerprint, true)
			Configure()

			_, ok := Client.Transport.(*FingerprintTransport)
			So(ok, ShouldBeTrue)
			_, ok = Media.Transport.(*FingerprintTransport)
			So(ok, ShouldBeTrue)
		})

		Convey("Without it the stock transport is used", func() {
			viper.Set(key.NetworkFingerprint, false)
			Configure()

			_, ok := Client.Transport.(*http.Transport)
			So(ok, ShouldBeTrue)
		})

		Convey("Media downloads have no overall timeout", func() {
			So(Media.Timeout, ShouldEqual, 0)
		})
	})
}
