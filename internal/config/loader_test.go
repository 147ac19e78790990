package config_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/marquee-live/marquee/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"MARQUEE_CONFIG",
		"MARQUEE_ADDR",
		"MARQUEE_LOG_LEVEL",
		"MARQUEE_QUEUE_SIZE",
		"MARQUEE_WORKER_COUNT",
		"MARQUEE_DEDUPE_SIZE",
		"MARQUEE_CACHE_SIZE",
		"MARQUEE_DEFAULT_HORIZON_DAYS",
		"MARQUEE_MAX_WINDOW_DAYS",
		"MARQUEE_FEED_URL",
		"MARQUEE_FEED_CRON",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	Convey("Given a config loader", t, func() {
		ctx := context.Background()

		Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			Convey("Then the defaults come through", func() {
				So(err, ShouldBeNil)
				So(cfg, ShouldNotBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.QueueSize, ShouldEqual, 100_000)
				So(cfg.WorkerCount, ShouldEqual, runtime.NumCPU()*4)
				So(cfg.DedupeSize, ShouldEqual, 500_000)
				So(cfg.DefaultHorizonDays, ShouldEqual, 7)
				So(cfg.MaxWindowDays, ShouldEqual, 366)
				So(cfg.FeedURL, ShouldBeEmpty)
			})
		})

		Convey("When environment variables are set", func() {
			clearConfigEnvVars()
			_ = os.Setenv("MARQUEE_ADDR", ":8080")
			_ = os.Setenv("MARQUEE_WORKER_COUNT", "16")
			_ = os.Setenv("MARQUEE_DEFAULT_HORIZON_DAYS", "14")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			Convey("Then env values override defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.WorkerCount, ShouldEqual, 16)
				So(cfg.DefaultHorizonDays, ShouldEqual, 14)
				So(cfg.QueueSize, ShouldEqual, 100_000)
			})
		})

		Convey("When a config file is provided", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "marquee.yaml")
			yaml := "addr: \":7070\"\nqueue_size: 500\nfeed_url: \"http://upstream.local/entities\"\n"
			So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
			_ = os.Setenv("MARQUEE_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			Convey("Then file values layer over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.QueueSize, ShouldEqual, 500)
				So(cfg.FeedURL, ShouldEqual, "http://upstream.local/entities")
			})

			Convey("And env still beats the file", func() {
				_ = os.Setenv("MARQUEE_ADDR", ":6060")
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
			})
		})

		Convey("When the config file is missing", func() {
			clearConfigEnvVars()
			_ = os.Setenv("MARQUEE_CONFIG", "/does/not/exist.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("When validation fails", func() {
			clearConfigEnvVars()
			defer clearConfigEnvVars()

			Convey("Then an empty addr is rejected", func() {
				dir := t.TempDir()
				path := filepath.Join(dir, "bad.yaml")
				So(os.WriteFile(path, []byte("addr: \"\"\n"), 0o600), ShouldBeNil)
				_ = os.Setenv("MARQUEE_CONFIG", path)

				_, err := config.Load(ctx)
				So(err, ShouldNotBeNil)
			})

			Convey("Then a zero horizon is rejected", func() {
				_ = os.Setenv("MARQUEE_DEFAULT_HORIZON_DAYS", "0")
				_, err := config.Load(ctx)
				So(err, ShouldNotBeNil)
			})

			Convey("Then a max window below the horizon is rejected", func() {
				_ = os.Setenv("MARQUEE_MAX_WINDOW_DAYS", "3")
				_, err := config.Load(ctx)
				So(err, ShouldNotBeNil)
			})
		})
	})
}
