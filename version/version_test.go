package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tilawah-cli/tilawah/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		So(must(Compare("1.2.3", "1.2.3")), ShouldEqual, 0)
		So(must(Compare("v1.3.0", "1.2.9")), ShouldEqual, 1)
		So(must(Compare("0.1.0", "0.10.0")), ShouldEqual, -1)

		_, err := Compare("latest", "1.0.0")
		So(err, ShouldNotBeNil)
	})
}

func TestLatest(t *testing.T) {
	Convey("Given a releases endpoint", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"tag_name":"v1.4.2"}`))
		}))
		defer srv.Close()
		ReleasesURL = srv.URL

		latest, err := Latest(context.Background())
		So(err, ShouldBeNil)
		So(latest, ShouldEqual, "1.4.2")
	})
}

func must(v int, err error) int {
	So(err, ShouldBeNil)
	return v
}
