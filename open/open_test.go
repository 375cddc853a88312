package open

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tilawah-cli/tilawah/constant"
)

func TestCommand(t *testing.T) {
	Convey("Each platform gets its own launcher", t, func() {
		const url = "https://quran.com/1/1"

		cmd, ok := Command(constant.Linux, url)
		So(ok, ShouldBeTrue)
		So(filepath.Base(cmd.Path), ShouldEqual, "xdg-open")
		So(cmd.Args, ShouldResemble, []string{"xdg-open", url})

		cmd, ok = Command(constant.Darwin, url)
		So(ok, ShouldBeTrue)
		So(cmd.Args, ShouldResemble, []string{"open", url})

		cmd, ok = Command(constant.Windows, url)
		So(ok, ShouldBeTrue)
		So(cmd.Args[1:], ShouldResemble, []string{"url.dll,FileProtocolHandler", url})

		_, ok = Command("plan9", url)
		So(ok, ShouldBeFalse)
	})
}
