package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/okian/valuator/internal/domain/types"
	"github.com/okian/valuator/internal/domain/valuation"
	. "github.com/smartystreets/goconvey/convey"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestCount(t *testing.T) {
	Convey("Given stream counts in a request body", t, func() {
		Convey("When they are numbers", func() {
			var req types.ValuationRequest
			err := json.Unmarshal([]byte(`{"total_streams": 1200000, "top_five_streams": 300000.5}`), &req)

			Convey("Then they decode as-is", func() {
				So(err, ShouldBeNil)
				So(float64(*req.TotalStreams), ShouldEqual, 1200000.0)
				So(float64(*req.TopFiveStreams), ShouldEqual, 300000.5)
			})
		})

		Convey("When they are numeric strings with separators", func() {
			var req types.ValuationRequest
			err := json.Unmarshal([]byte(`{"total_streams": "1,250,000", "top_five_streams": " 40000 "}`), &req)

			Convey("Then separators and spaces are ignored", func() {
				So(err, ShouldBeNil)
				So(float64(*req.TotalStreams), ShouldEqual, 1250000.0)
				So(float64(*req.TopFiveStreams), ShouldEqual, 40000.0)
			})
		})

		Convey("When a string is not numeric", func() {
			var req types.ValuationRequest
			err := json.Unmarshal([]byte(`{"total_streams": "lots"}`), &req)

			Convey("Then it decodes to zero", func() {
				So(err, ShouldBeNil)
				So(float64(*req.TotalStreams), ShouldEqual, 0.0)
			})
		})

		Convey("When a count is omitted", func() {
			var req types.ValuationRequest
			err := json.Unmarshal([]byte(`{"genres": ["Jazz"]}`), &req)

			Convey("Then it stays nil", func() {
				So(err, ShouldBeNil)
				So(req.TotalStreams, ShouldBeNil)
				So(req.TopFiveStreams, ShouldBeNil)
			})
		})

		Convey("When a count has the wrong JSON type", func() {
			var req types.ValuationRequest
			err := json.Unmarshal([]byte(`{"total_streams": true}`), &req)

			Convey("Then decoding fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestReportOf(t *testing.T) {
	Convey("Given a pipeline trace", t, func() {
		tr := valuation.Estimate(valuation.Input{
			Genres:   []string{"Jazz", "Polka"},
			Earnings: valuation.Earnings{Streaming: valuation.EarningsPair{TrailingTwelveMonths: 1000, Lifetime: 10000}},
		}, testNow)

		Convey("When converted to a report", func() {
			r := types.ReportOf(tr)

			Convey("Then every stage value is carried over", func() {
				So(r.Scores.Genre, ShouldEqual, tr.GenreScore)
				So(r.Scores.Weighted, ShouldEqual, tr.WeightedScore)
				So(r.Final, ShouldResemble, tr.Final)
				So(r.Valuation, ShouldResemble, tr.Valuation)
				So(r.Revenue.AgeCategory, ShouldEqual, tr.Revenue.AgeCategory.String())
				So(r.UnknownGenres, ShouldResemble, []string{"Polka"})
				So(r.ID, ShouldBeEmpty)
			})

			Convey("And it encodes with snake_case keys", func() {
				b, err := json.Marshal(r)
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"final_multiplier"`)
				So(string(b), ShouldContainSubstring, `"age_category":"new"`)
			})
		})
	})
}
