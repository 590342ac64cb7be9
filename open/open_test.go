package open

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	Convey("Given a chapter link", t, func() {
		link := "https://cdn.example.com/b1/c0.mp3"

		Convey("Linux uses xdg-open", func() {
			cmd, err := Command("linux", link)
			So(err, ShouldBeNil)
			So(cmd.Args, ShouldResemble, []string{"xdg-open", link})
		})

		Convey("macOS uses open", func() {
			cmd, err := Command("darwin", link)
			So(err, ShouldBeNil)
			So(cmd.Args, ShouldResemble, []string{"open", link})
		})

		Convey("Windows goes through rundll32", func() {
			cmd, err := Command("windows", link)
			So(err, ShouldBeNil)
			So(cmd.Args[1:], ShouldResemble, []string{"url.dll,FileProtocolHandler", link})
		})

		Convey("Other systems are refused", func() {
			_, err := Command("plan9", link)
			So(err, ShouldNotBeNil)
		})
	})
}
