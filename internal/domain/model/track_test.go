package model_test

import (
	"testing"
	"time"

	model "github.com/okian/valuator/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTrack(t *testing.T) {
	convey.Convey("Given a Track", t, func() {
		convey.Convey("When the status is released in any case", func() {
			for _, status := range []string{"released", "Released", " RELEASED "} {
				tr := model.Track{ID: "t1", Status: status}
				convey.So(tr.Released(), convey.ShouldBeTrue)
			}
		})

		convey.Convey("When the status is anything else", func() {
			for _, status := range []string{"", "draft", "scheduled"} {
				tr := model.Track{ID: "t1", Status: status}
				convey.So(tr.Released(), convey.ShouldBeFalse)
			}
		})

		convey.Convey("When the release date is missing or zero", func() {
			zero := time.Time{}
			convey.So(model.Track{}.Dated(), convey.ShouldBeFalse)
			convey.So(model.Track{ReleaseDate: &zero}.Dated(), convey.ShouldBeFalse)
		})

		convey.Convey("When the release date is set", func() {
			d := time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC)
			convey.So(model.Track{ReleaseDate: &d}.Dated(), convey.ShouldBeTrue)
		})
	})
}
