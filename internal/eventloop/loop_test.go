package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoop(t *testing.T) {
	Convey("Given a loop", t, func() {
		loop := New()

		Convey("Posted callbacks run in order on Drain", func() {
			var got []int
			for i := 0; i < 3; i++ {
				i := i
				loop.Post(func() { got = append(got, i) })
			}

			So(loop.Pending(), ShouldEqual, 3)
			So(loop.Drain(), ShouldEqual, 3)
			So(got, ShouldResemble, []int{0, 1, 2})
			So(loop.Pending(), ShouldEqual, 0)
		})

		Convey("Callbacks posted while draining run in the same drain", func() {
			var got []string
			loop.Post(func() {
				got = append(got, "outer")
				loop.Post(func() { got = append(got, "inner") })
			})

			So(loop.Drain(), ShouldEqual, 2)
			So(got, ShouldResemble, []string{"outer", "inner"})
		})

		Convey("Post from many goroutines never blocks", func() {
			var wg sync.WaitGroup
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					loop.Post(func() {})
				}()
			}
			wg.Wait()

			So(loop.Drain(), ShouldEqual, 100)
		})

		Convey("Wake is signalled after a post", func() {
			loop.Post(func() {})
			select {
			case <-loop.Wake():
			case <-time.After(time.Second):
				So("wake never fired", ShouldBeEmpty)
			}
		})

		Convey("Run stops with the context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			ran := make(chan struct{})
			loop.Post(func() {
				close(ran)
				cancel()
			})

			err := loop.Run(ctx)
			So(err, ShouldEqual, context.Canceled)

			select {
			case <-ran:
			default:
				So("callback did not run", ShouldBeEmpty)
			}
		})
	})
}
