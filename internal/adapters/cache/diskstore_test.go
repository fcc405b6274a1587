package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/clanstats/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestDiskStoreRoundTrip(t *testing.T) {
	Convey("Given a disk store in an empty directory", t, func() {
		ctx := context.Background()
		clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
		dir := filepath.Join(t.TempDir(), "nested", "cache")
		store := cache.NewDiskStore(dir, cache.WithClock(clock.Now))
		value := json.RawMessage(`{"tag":"#2PP","name":"Clan"}`)

		Convey("When nothing was stored", func() {
			_, ok := store.Get(ctx, "clans_#2PP", time.Hour)

			Convey("Then the lookup misses without error", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a value is stored", func() {
			So(store.Set(ctx, "clans_#2PP", value), ShouldBeNil)

			Convey("Then the directory is created", func() {
				info, err := os.Stat(dir)
				So(err, ShouldBeNil)
				So(info.IsDir(), ShouldBeTrue)
			})

			Convey("Then it is returned while fresh", func() {
				got, ok := store.Get(ctx, "clans_#2PP", time.Hour)
				So(ok, ShouldBeTrue)
				So(string(got), ShouldEqual, string(value))
			})

			Convey("Then it is still fresh exactly at the ttl", func() {
				clock.Advance(time.Hour)
				_, ok := store.Get(ctx, "clans_#2PP", time.Hour)
				So(ok, ShouldBeTrue)
			})

			Convey("Then it expires once the ttl elapsed", func() {
				clock.Advance(time.Hour + time.Second)
				_, ok := store.Get(ctx, "clans_#2PP", time.Hour)
				So(ok, ShouldBeFalse)
			})

			Convey("Then a non-positive ttl always misses", func() {
				_, ok := store.Get(ctx, "clans_#2PP", 0)
				So(ok, ShouldBeFalse)
			})

			Convey("Then the file holds the timestamp and the data", func() {
				raw, err := os.ReadFile(store.Path("clans_#2PP"))
				So(err, ShouldBeNil)
				var doc map[string]json.RawMessage
				So(json.Unmarshal(raw, &doc), ShouldBeNil)
				So(string(doc["fetchedAt"]), ShouldEqual, `"2024-05-01T12:00:00Z"`)
				So(string(doc["data"]), ShouldEqual, string(value))
			})

			Convey("Then no temporary files are left behind", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})
		})

		Convey("When a key is overwritten", func() {
			So(store.Set(ctx, "players_#A", json.RawMessage(`1`)), ShouldBeNil)
			clock.Advance(30 * time.Minute)
			So(store.Set(ctx, "players_#A", json.RawMessage(`2`)), ShouldBeNil)
			clock.Advance(45 * time.Minute)

			Convey("Then the newest value and timestamp win", func() {
				got, ok := store.Get(ctx, "players_#A", time.Hour)
				So(ok, ShouldBeTrue)
				So(string(got), ShouldEqual, "2")
			})
		})

		Convey("When the value is not JSON", func() {
			err := store.Set(ctx, "k", json.RawMessage(`{`))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, cache.ErrInvalidValue), ShouldBeTrue)
			})
		})

		Convey("When the value is null or empty", func() {
			nullErr := store.Set(ctx, "clans_#N", json.RawMessage(`null`))
			emptyErr := store.Set(ctx, "clans_#E", nil)

			Convey("Then both are rejected and nothing is written", func() {
				So(errors.Is(nullErr, cache.ErrInvalidValue), ShouldBeTrue)
				So(errors.Is(emptyErr, cache.ErrInvalidValue), ShouldBeTrue)
				_, statErr := os.Stat(store.Path("clans_#N"))
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}

func TestDiskStoreDamagedEntries(t *testing.T) {
	Convey("Given entries damaged on disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		store := cache.NewDiskStore(dir)

		Convey("When the file is not JSON", func() {
			So(os.WriteFile(store.Path("clans_#X"), []byte("garbage"), 0o644), ShouldBeNil)
			_, ok := store.Get(ctx, "clans_#X", time.Hour)

			Convey("Then it counts as a miss", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the entry has no timestamp", func() {
			So(os.WriteFile(store.Path("clans_#Y"), []byte(`{"data":{"a":1}}`), 0o644), ShouldBeNil)
			_, ok := store.Get(ctx, "clans_#Y", time.Hour)

			Convey("Then it counts as a miss", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a fresh entry has no data field", func() {
			stamp := time.Now().UTC().Format(time.RFC3339Nano)
			So(os.WriteFile(store.Path("clans_#Z"), []byte(`{"fetchedAt":"`+stamp+`"}`), 0o644), ShouldBeNil)
			got, ok := store.Get(ctx, "clans_#Z", time.Hour)

			Convey("Then it counts as a miss", func() {
				So(ok, ShouldBeFalse)
				So(got, ShouldBeNil)
			})
		})

		Convey("When a fresh entry has null data", func() {
			stamp := time.Now().UTC().Format(time.RFC3339Nano)
			So(os.WriteFile(store.Path("clans_#W"), []byte(`{"fetchedAt":"`+stamp+`","data":null}`), 0o644), ShouldBeNil)
			got, ok := store.Get(ctx, "clans_#W", time.Hour)

			Convey("Then it counts as a miss", func() {
				So(ok, ShouldBeFalse)
				So(got, ShouldBeNil)
			})
		})
	})
}

func TestFileName(t *testing.T) {
	Convey("Given logical cache keys", t, func() {
		Convey("Unsafe characters become underscores and a hash is appended", func() {
			name := cache.FileName("clans_#2PP/members")
			So(strings.HasPrefix(name, "clans__2PP_members-"), ShouldBeTrue)
			So(strings.HasSuffix(name, ".json"), ShouldBeTrue)
			So(len(name), ShouldEqual, len("clans__2PP_members-")+16+len(".json"))
		})

		Convey("Keys whose readable stems collide still map to different files", func() {
			a := cache.FileName("clans_#2PP/members")
			b := cache.FileName("clans_#2PP_members")
			So(a, ShouldNotEqual, b)
		})

		Convey("The same key always maps to the same file", func() {
			So(cache.FileName("players_#ABC"), ShouldEqual, cache.FileName("players_#ABC"))
		})

		Convey("Long keys are truncated in the stem", func() {
			name := cache.FileName(strings.Repeat("x", 300))
			So(len(name), ShouldEqual, 80+1+16+len(".json"))
		})
	})
}

func TestCompact(t *testing.T) {
	Convey("Given an indented JSON body", t, func() {
		out, err := cache.Compact([]byte("{\n  \"a\": [1, 2]\n}"))
		So(err, ShouldBeNil)
		So(string(out), ShouldEqual, `{"a":[1,2]}`)

		_, err = cache.Compact([]byte("nope"))
		So(errors.Is(err, cache.ErrInvalidValue), ShouldBeTrue)
	})
}
