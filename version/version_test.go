package version

import (
	"net/http"
	"testing"

	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/network"
	"github.com/jarcoal/httpmock"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		So(must(Compare("1.2.3", "1.2.3")), ShouldEqual, 0)
		So(must(Compare("v1.3.0", "1.2.9")), ShouldEqual, 1)
		So(must(Compare("0.3.0", "1.0.0")), ShouldEqual, -1)
		So(must(Compare("1.0.0-rc1", "1.0.0")), ShouldEqual, -1)
		So(must(Compare("1.0.0", "0.9.9-beta")), ShouldEqual, 1)
		So(must(Compare("1.0.0-rc2", "1.0.0-rc1")), ShouldEqual, 1)

		_, err := Compare("latest", "1.0.0")
		So(err, ShouldNotBeNil)
	})
}

func TestLatest(t *testing.T) {
	Convey("Given the releases endpoint", t, func() {
		httpmock.ActivateNonDefault(network.Client)
		Reset(httpmock.DeactivateAndReset)
		_ = versionCacher.Set("")

		Convey("The tag is returned without its prefix", func() {
			httpmock.RegisterResponder(http.MethodGet, ReleasesURL,
				httpmock.NewStringResponder(200, `{"tag_name":"v1.4.0"}`))

			v, err := Latest()
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "1.4.0")

			Convey("And is served from cache afterwards", func() {
				httpmock.Reset()
				v, err := Latest()
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "1.4.0")
				So(httpmock.GetTotalCallCount(), ShouldEqual, 0)
			})
		})

		Convey("An empty tag is an error", func() {
			httpmock.RegisterResponder(http.MethodGet, ReleasesURL,
				httpmock.NewStringResponder(200, `{}`))

			_, err := Latest()
			So(err, ShouldNotBeNil)
		})
	})
}

func must(n int, err error) int {
	if err != nil {
		panic(err)
	}
	return n
}
