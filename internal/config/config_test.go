package config_test

import (
	"errors"
	"testing"

	"github.com/okian/valuator/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DatabasePath, convey.ShouldBeEmpty)
			convey.So(cfg.CacheSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.DefaultAdminFee, convey.ShouldEqual, 0.0)
			convey.So(cfg.MaxTracks, convey.ShouldEqual, 50_000)
			convey.So(cfg.Workers, convey.ShouldEqual, 0)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out-of-range values", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "  " }},
			{"negative fee", func(c *config.Config) { c.DefaultAdminFee = -1 }},
			{"fee above 100", func(c *config.Config) { c.DefaultAdminFee = 101 }},
			{"negative tracks", func(c *config.Config) { c.MaxTracks = -1 }},
			{"negative workers", func(c *config.Config) { c.Workers = -4 }},
			{"unknown encoding", func(c *config.Config) { c.LogFormat = "xml" }},
		}
		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+tc.name+" is rejected as invalid config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
