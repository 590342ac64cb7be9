package ui

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notice line", t, func() {
		var m Model

		Convey("A notice is shown and scheduled for clearing", func() {
			cmd := m.Update(NoticeMsg{Text: "visualization disabled"})
			So(cmd, ShouldNotBeNil)
			So(m.Current(), ShouldEqual, "visualization disabled")
			So(strings.Contains(m.View("body"), "visualization disabled"), ShouldBeTrue)
		})

		Convey("A stale clear does not remove a newer notice", func() {
			m.Update(NoticeMsg{Text: "first"})
			stale := ClearNoticeMsg{sequence: m.sequence}
			m.Update(NoticeMsg{Text: "second"})
			m.Update(stale)
			So(m.Current(), ShouldEqual, "second")

			m.Update(ClearNoticeMsg{sequence: m.sequence})
			So(m.Current(), ShouldBeEmpty)
		})

		Convey("Without a notice the content is untouched", func() {
			So(m.View("a\nb"), ShouldEqual, "a\nb")
		})
	})
}
