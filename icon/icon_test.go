package icon

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/key"
)

func TestGet(t *testing.T) {
	Convey("Every icon renders in every variant", t, func() {
		for _, variant := range AvailableVariants() {
			viper.Set(key.IconsVariant, variant)
			for i := range icons {
				So(Get(i), ShouldNotBeEmpty)
			}
		}
	})

	Convey("An unknown variant renders nothing", t, func() {
		viper.Set(key.IconsVariant, "kaomoji")
		So(Get(Play), ShouldBeEmpty)
	})

	Convey("An unknown icon renders nothing", t, func() {
		viper.Set(key.IconsVariant, plain)
		So(Get(Icon(999)), ShouldBeEmpty)
	})
}
