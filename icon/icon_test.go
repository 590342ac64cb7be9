package icon

import (
	"testing"

	"github.com/vibe-audio/vibe/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given a registered icon", t, func() {
		target := Bookmark

		Convey("It renders correctly for each variant", func() {
			for _, variant := range AvailableVariants() {
				Convey("variant="+variant, func() {
					viper.Set(key.IconsVariant, variant)
					result := Get(target)
					So(result, ShouldNotBeEmpty)
				})
			}
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			result := Get(target)
			So(result, ShouldBeEmpty)
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Every icon in the registry renders in every variant", t, func() {
		for i := Fail; i <= Link; i++ {
			def, ok := icons[i]
			So(ok, ShouldBeTrue)
			for _, variant := range AvailableVariants() {
				viper.Set(key.IconsVariant, variant)
				So(def.Get(), ShouldNotBeEmpty)
			}
		}
	})
}
