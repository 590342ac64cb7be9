package script

import (
	"context"
	"net/http"
	"testing"

	"github.com/vibe-audio/vibe/filesystem"
	"github.com/jarcoal/httpmock"
	. "github.com/smartystreets/goconvey/convey"
	lua "github.com/yuin/gopher-lua"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestLoad(t *testing.T) {
	Convey("Given a script on disk", t, func() {
		path := "/scripts/answer.lua"
		So(filesystem.API().WriteFile(path, []byte(`answer = 40 + 2`), 0o644), ShouldBeNil)
		Forget(path)

		Convey("It runs and its globals are visible", func() {
			L := NewState()
			defer L.Close()

			So(Load(L, path), ShouldBeNil)
			So(L.GetGlobal("answer"), ShouldEqual, lua.LNumber(42))

			Convey("And a second state reuses the compiled prototype", func() {
				_, cached := bytecodeCache.Load(path)
				So(cached, ShouldBeTrue)

				L2 := NewState()
				defer L2.Close()
				So(Load(L2, path), ShouldBeNil)
				So(L2.GetGlobal("answer"), ShouldEqual, lua.LNumber(42))
			})
		})

		Convey("A syntax error is reported", func() {
			bad := "/scripts/bad.lua"
			So(filesystem.API().WriteFile(bad, []byte(`function (`), 0o644), ShouldBeNil)

			L := NewState()
			defer L.Close()
			So(Load(L, bad), ShouldNotBeNil)
		})
	})
}

func TestInstall(t *testing.T) {
	Convey("Given a remote script", t, func() {
		client := &http.Client{}
		httpmock.ActivateNonDefault(client)
		Reset(httpmock.DeactivateAndReset)

		const remote = "https://example.com/host.lua"
		const local = "/resolvers/host.lua"
		httpmock.RegisterResponder(http.MethodGet, remote, httpmock.NewStringResponder(200, "function Resolve(u) return u end"))
		_ = filesystem.API().Remove(local)

		Convey("It is written on first install", func() {
			changed, err := Install(context.Background(), client, remote, local)
			So(err, ShouldBeNil)
			So(changed, ShouldBeTrue)

			content, err := filesystem.API().ReadFile(local)
			So(err, ShouldBeNil)
			So(string(content), ShouldContainSubstring, "Resolve")

			Convey("And left alone when unchanged", func() {
				changed, err := Install(context.Background(), client, remote, local)
				So(err, ShouldBeNil)
				So(changed, ShouldBeFalse)
			})
		})

		Convey("A failing status is an error", func() {
			httpmock.RegisterResponder(http.MethodGet, remote, httpmock.NewStringResponder(404, ""))
			_, err := Install(context.Background(), client, remote, local)
			So(err, ShouldNotBeNil)
		})
	})
}
