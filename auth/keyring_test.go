package auth

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func TestToken(t *testing.T) {
	keyring.MockInit()

	Convey("Given an empty keyring", t, func() {
		So(DeleteToken(), ShouldBeNil)

		Convey("Token is empty", func() {
			So(Token(), ShouldBeEmpty)
		})

		Convey("A stored token can be read back and removed", func() {
			So(SetToken("s3cret"), ShouldBeNil)
			So(Token(), ShouldEqual, "s3cret")

			So(DeleteToken(), ShouldBeNil)
			So(Token(), ShouldBeEmpty)
		})
	})
}
