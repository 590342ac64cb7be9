package resolver

import (
	"path/filepath"
	"testing"

	"github.com/vibe-audio/vibe/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestResolve(t *testing.T) {
	Convey("Given a direct media URL", t, func() {
		Convey("It is returned unchanged", func() {
			for _, raw := range []string{
				"https://cdn.example.com/books/1/ch01.mp3",
				"https://example.com/a.mp3?token=abc&x=1",
				"",
				"not a url at all",
			} {
				So(Resolve(raw), ShouldEqual, raw)
			}
		})

		Convey("Spaces are encoded", func() {
			So(Resolve("https://cdn.example.com/my book/ch 1.mp3"), ShouldEqual, "https://cdn.example.com/my%20book/ch%201.mp3")
		})
	})

	Convey("Given a cloud-drive share link", t, func() {
		Convey("The path form is rewritten", func() {
			So(Resolve("https://drive.google.com/file/d/1AbC_xyz-9/view?usp=sharing"),
				ShouldEqual, "https://drive.google.com/uc?export=download&id=1AbC_xyz-9")
		})

		Convey("The query form is rewritten", func() {
			So(Resolve("https://drive.google.com/open?id=1AbC_xyz-9&authuser=0"),
				ShouldEqual, "https://drive.google.com/uc?export=download&id=1AbC_xyz-9")
		})

		Convey("The docs host is recognised", func() {
			So(Resolve("https://docs.google.com/uc?id=XYZ"), ShouldEqual, "https://drive.google.com/uc?export=download&id=XYZ")
		})

		Convey("A link without an id fails open", func() {
			raw := "https://drive.google.com/drive/my drive"
			So(Resolve(raw), ShouldEqual, "https://drive.google.com/drive/my%20drive")
		})

		Convey("IsCloudDrive tells them apart", func() {
			So(IsCloudDrive("https://drive.google.com/uc?id=1"), ShouldBeTrue)
			So(IsCloudDrive("https://cdn.example.com/a.mp3"), ShouldBeFalse)
		})
	})
}

func TestChain(t *testing.T) {
	Convey("Given a resolvers directory", t, func() {
		dir := "/resolvers-" + t.Name()
		write := func(name, body string) {
			So(filesystem.API().WriteFile(filepath.Join(dir, name), []byte(body), 0o644), ShouldBeNil)
		}

		write("a_mirror.lua", `
function Resolve(url)
	if string.find(url, "mirror://", 1, true) == 1 then
		return "https://mirror.example.com/" .. string.sub(url, 10)
	end
	return nil
end`)
		write("b_broken.lua", `function Resolve(url) error("boom") end`)
		write("c_missing.lua", `x = 1`)
		write("notes.txt", `ignored`)

		chain, err := LoadDir(dir)
		So(err, ShouldBeNil)
		Reset(chain.Close)

		Convey("Scripts without the resolve function are skipped", func() {
			So(len(chain.Scripts), ShouldEqual, 2)
		})

		Convey("A matching script rewrites the link", func() {
			So(chain.Resolve("mirror://book 1/ch1.mp3"), ShouldEqual, "https://mirror.example.com/book%201/ch1.mp3")
		})

		Convey("Errors and nil results fall through to the builtin rules", func() {
			So(chain.Resolve("https://drive.google.com/file/d/ID/view"), ShouldEqual, "https://drive.google.com/uc?export=download&id=ID")
		})

		Convey("A nil chain behaves like the builtin resolver", func() {
			var nilChain *Chain
			So(nilChain.Resolve("a b"), ShouldEqual, "a%20b")
		})
	})
}
