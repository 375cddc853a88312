package ui

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notifier", t, func() {
		m := &Model{}
		So(m.View("line one\nline two"), ShouldEqual, "line one\nline two")

		Convey("A string becomes the notification and schedules its removal", func() {
			So(m.Update("reciter: Misyari Rasyid Al-Afasi"), ShouldNotBeNil)
			So(m.Text(), ShouldEqual, "reciter: Misyari Rasyid Al-Afasi")
			So(m.View("line one\nline two"), ShouldStartWith, "line one\nline two  ")

			Convey("An expired notification is cleared", func() {
				So(m.Update(ClearNotificationMsg{at: m.notifiedAt}), ShouldBeNil)
				So(m.Text(), ShouldBeEmpty)
			})

			Convey("A newer notification survives the older one's expiry", func() {
				old := m.notifiedAt
				time.Sleep(time.Millisecond)
				m.Update("repeat surah: on")
				m.Update(ClearNotificationMsg{at: old})
				So(m.Text(), ShouldEqual, "repeat surah: on")
			})
		})

		Convey("Other messages are ignored", func() {
			So(m.Update(42), ShouldBeNil)
			So(m.Text(), ShouldBeEmpty)
		})
	})
}
