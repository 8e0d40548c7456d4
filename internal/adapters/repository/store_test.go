package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/valuator/internal/adapters/repository"
	"github.com/okian/valuator/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleTracks() []model.Track {
	day := func(y int, m time.Month) *time.Time {
		t := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}
	str := func(s string) *string { return &s }

	return []model.Track{
		{ID: "t1", Title: "One", Status: "released", ReleaseDate: day(2015, 3), Streams: 900,
			PublisherSplits: str(`[{"holder_id":"h1","holder_name":"North","percentage":60},{"holder_id":"h2","percentage":"40"}]`)},
		{ID: "t2", Title: "Two", Status: "Released", ReleaseDate: day(2018, 7), Streams: 800,
			PublisherSplits: str(`[{"holder_id":"h1","percentage":100}]`)},
		{ID: "t3", Title: "Three", Status: "released", Streams: 700, PublisherSplits: str(`not json`)},
		{ID: "t4", Title: "Four", Status: "released", Streams: 600},
		{ID: "t5", Title: "Five", Status: "released", Streams: 500},
		{ID: "t6", Title: "Six", Status: "released", Streams: 400},
		{ID: "t7", Title: "Draft", Status: "draft", Streams: 10_000,
			PublisherSplits: str(`[{"holder_id":"h3","percentage":100}]`)},
	}
}

type storeCase struct {
	name string
	open func(t *testing.T) repository.Store
}

func storeCases() []storeCase {
	return []storeCase{
		{"MemoryStore", func(*testing.T) repository.Store { return repository.NewMemoryStore() }},
		{"SQLStore", func(t *testing.T) repository.Store {
			s, err := repository.OpenSQLStore(filepath.Join(t.TempDir(), "catalogs.db"), repository.WithBatchSize(2))
			if err != nil {
				t.Fatalf("open sqlite store: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
	}
}

func TestStores(t *testing.T) {
	for _, sc := range storeCases() {
		t.Run(sc.name, func(t *testing.T) {
			Convey("Given a "+sc.name+" with one imported catalog", t, func() {
				ctx := context.Background()
				store := sc.open(t)
				So(store.PutTracks(ctx, "cat-1", sampleTracks()), ShouldBeNil)

				Convey("It counts one catalog", func() {
					So(store.Count(ctx), ShouldEqual, 1)
				})

				Convey("ReleasedTracks skips unreleased tracks and orders by id", func() {
					tracks, err := store.ReleasedTracks(ctx, "cat-1")
					So(err, ShouldBeNil)
					So(len(tracks), ShouldEqual, 6)
					So(tracks[0].ID, ShouldEqual, "t1")
					So(tracks[5].ID, ShouldEqual, "t6")
					So(tracks[0].CatalogID, ShouldEqual, "cat-1")
					So(tracks[0].ReleaseDate, ShouldNotBeNil)
					So(tracks[0].ReleaseDate.Equal(time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
					So(tracks[3].ReleaseDate, ShouldBeNil)
					So(tracks[3].PublisherSplits, ShouldBeNil)
				})

				Convey("StreamStats sums released streams and the five largest", func() {
					stats, err := store.StreamStats(ctx, "cat-1")
					So(err, ShouldBeNil)
					So(stats.Total, ShouldEqual, 3900)
					So(stats.TopFive, ShouldEqual, 3500)
				})

				Convey("Holders come from well-formed split documents", func() {
					holders, err := store.Holders(ctx, "cat-1")
					So(err, ShouldBeNil)
					So(len(holders), ShouldEqual, 3)
					So(holders[0], ShouldResemble, model.Holder{ID: "h1", Name: "North", Tracks: 2})
					So(holders[1].ID, ShouldEqual, "h2")
					So(holders[2].ID, ShouldEqual, "h3")
				})

				Convey("PutTracks replaces tracks with the same id", func() {
					updated := sampleTracks()[3]
					updated.Streams = 5_000
					So(store.PutTracks(ctx, "cat-1", []model.Track{updated}), ShouldBeNil)

					stats, err := store.StreamStats(ctx, "cat-1")
					So(err, ShouldBeNil)
					So(stats.Total, ShouldEqual, 8300)
					So(stats.TopFive, ShouldEqual, 7900)
					So(store.Count(ctx), ShouldEqual, 1)
				})

				Convey("Unknown catalogs are reported as not found", func() {
					_, err := store.ReleasedTracks(ctx, "missing")
					So(errors.Is(err, repository.ErrCatalogNotFound), ShouldBeTrue)
					_, err = store.StreamStats(ctx, "missing")
					So(errors.Is(err, repository.ErrCatalogNotFound), ShouldBeTrue)
					_, err = store.Holders(ctx, "missing")
					So(errors.Is(err, repository.ErrCatalogNotFound), ShouldBeTrue)
				})

				Convey("Invalid imports are rejected", func() {
					So(errors.Is(store.PutTracks(ctx, "", sampleTracks()), repository.ErrInvalidCatalog), ShouldBeTrue)
					So(errors.Is(store.PutTracks(ctx, "cat-2", []model.Track{{Title: "no id"}}), repository.ErrInvalidTrack), ShouldBeTrue)
					So(store.Count(ctx), ShouldEqual, 1)
				})
			})
		})
	}
}

func TestSQLStorePersists(t *testing.T) {
	Convey("Given a sqlite store file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "catalogs.db")

		first, err := repository.OpenSQLStore(path)
		So(err, ShouldBeNil)
		So(first.PutTracks(ctx, "cat-1", sampleTracks()), ShouldBeNil)
		So(first.Close(), ShouldBeNil)

		Convey("A reopened store sees the same catalog", func() {
			second, err := repository.OpenSQLStore(path)
			So(err, ShouldBeNil)
			defer func() { _ = second.Close() }()

			tracks, err := second.ReleasedTracks(ctx, "cat-1")
			So(err, ShouldBeNil)
			So(len(tracks), ShouldEqual, 6)
		})
	})
}
