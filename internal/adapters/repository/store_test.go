package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grimaarkan/speedruntracker/internal/adapters/repository"
	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/internal/domain/model"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sampleSet() *model.CategorySet {
	set := model.NewCategorySet(5)
	set.Set("any%", &model.Record{Category: "Any%", DetailedTime: "15:00.000", RawTimeSeconds: 900, RunnerName: "alpha", SubmissionDate: "2021-01-02"})
	set.Set("no_oob", &model.Record{Category: "No OOB", DetailedTime: "00:00.500", RawTimeSeconds: 0.5, RunnerName: "glitch"})
	set.Set("glitchless", &model.Record{Category: "Glitchless", DetailedTime: "00:01.500", RawTimeSeconds: 1.5, RunnerName: "beta", SubmissionDate: "2022-02-03"})
	placeholder := model.NoRuns("insane", "Insane")
	set.Set("insane", &placeholder)
	set.Set("100%", nil)
	return set
}

func TestFileStore_WriteSnapshot(t *testing.T) {
	Convey("Given a file store with a fixed clock", t, func() {
		dir := t.TempDir()
		at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
		store := repository.NewFileStore(dir, repository.WithClock(fixedClock(at)))
		game := catalog.Outlast()
		ctx := context.Background()

		Convey("When writing a compact snapshot", func() {
			path, err := store.WriteSnapshot(ctx, sampleSet(), game)
			So(err, ShouldBeNil)

			content, readErr := os.ReadFile(path)
			So(readErr, ShouldBeNil)

			Convey("Then the file is named after the stamp", func() {
				So(filepath.Base(path), ShouldEqual, "outlast_world_records_20240506_070809.txt")
			})

			Convey("Then the content follows the archive layout", func() {
				So(string(content), ShouldEqual,
					"As of: 2024-05-06 07:08:09 from: https://www.speedrun.com/outlast | "+
						"Any% : 15:00.000 by: alpha  | "+
						"Glitchless : 00:01.500 by: beta  | ")
			})

			Convey("Then degenerate, placeholder and failed records are excluded", func() {
				So(string(content), ShouldNotContainSubstring, "No OOB")
				So(string(content), ShouldNotContainSubstring, "Insane")
				So(string(content), ShouldNotContainSubstring, "No runs yet")
			})

			Convey("Then the latest path points at it", func() {
				latest, ok := store.Latest("outlast")
				So(ok, ShouldBeTrue)
				So(latest, ShouldEqual, path)

				_, ok = store.Latest("outlast2")
				So(ok, ShouldBeFalse)
			})

			Convey("And writing again in the same second", func() {
				second, err := store.WriteSnapshot(ctx, sampleSet(), game)

				Convey("Then a new file is created and the first is untouched", func() {
					So(err, ShouldBeNil)
					So(second, ShouldNotEqual, path)
					So(filepath.Base(second), ShouldEqual, "outlast_world_records_20240506_070809_1.txt")

					again, _ := os.ReadFile(path)
					So(string(again), ShouldEqual, string(content))

					latest, _ := store.Latest("outlast")
					So(latest, ShouldEqual, second)
				})
			})

			Convey("And the latest file disappears", func() {
				So(os.Remove(path), ShouldBeNil)
				_, ok := store.Latest("outlast")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When writing a readable export", func() {
			path, err := store.WriteReadable(ctx, sampleSet(), game)
			So(err, ShouldBeNil)
			content, _ := os.ReadFile(path)

			Convey("Then records are sorted fastest first with dates", func() {
				expected := "Outlast Speedrun World Records\n" +
					"Generated on: 2024-05-06 07:08:09\n" +
					"Data source: https://www.speedrun.com/outlast\n" +
					strings.Repeat("-", 60) + "\n\n" +
					"Category: Glitchless\nTime: 00:01.500\nRunner: beta\nDate: 2022-02-03\n\n" +
					"Category: Any%\nTime: 15:00.000\nRunner: alpha\nDate: 2021-01-02\n\n"
				So(string(content), ShouldEqual, expected)
			})

			Convey("Then it becomes the latest for the game", func() {
				latest, ok := store.Latest("outlast")
				So(ok, ShouldBeTrue)
				So(latest, ShouldEqual, path)
			})
		})

		Convey("When the export directory cannot be created", func() {
			blocker := filepath.Join(dir, "blocker")
			So(os.WriteFile(blocker, []byte("x"), 0o600), ShouldBeNil)
			bad := repository.NewFileStore(filepath.Join(blocker, "exports"))

			_, err := bad.WriteSnapshot(ctx, sampleSet(), game)

			Convey("Then a filesystem error is returned", func() {
				So(errors.Is(err, repository.ErrFilesystem), ShouldBeTrue)
			})
		})
	})
}

func TestFileStore_Prune(t *testing.T) {
	Convey("Given fifteen snapshot files with distinct modification times", t, func() {
		dir := t.TempDir()
		store := repository.NewFileStore(dir)
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 15; i++ {
			path := filepath.Join(dir, fmt.Sprintf("snap_%02d.txt", i))
			So(os.WriteFile(path, []byte("x"), 0o600), ShouldBeNil)
			mtime := base.Add(time.Duration(i) * time.Minute)
			So(os.Chtimes(path, mtime, mtime), ShouldBeNil)
		}
		So(os.WriteFile(filepath.Join(dir, "notes.md"), []byte("keep"), 0o600), ShouldBeNil)

		removed, err := store.Prune(context.Background(), 10)

		Convey("Then the five oldest are deleted", func() {
			So(err, ShouldBeNil)
			So(len(removed), ShouldEqual, 5)
			for i := 0; i < 5; i++ {
				So(removed, ShouldContain, fmt.Sprintf("snap_%02d.txt", i))
			}
		})

		Convey("Then the ten newest remain, newest first", func() {
			files, err := store.List(context.Background())
			So(err, ShouldBeNil)
			So(len(files), ShouldEqual, 10)
			So(files[0].Name, ShouldEqual, "snap_14.txt")
			So(files[9].Name, ShouldEqual, "snap_05.txt")
		})

		Convey("Then files with other extensions are untouched", func() {
			_, err := os.Stat(filepath.Join(dir, "notes.md"))
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a missing export directory", t, func() {
		store := repository.NewFileStore(filepath.Join(t.TempDir(), "absent"))

		removed, err := store.Prune(context.Background(), 10)
		So(err, ShouldBeNil)
		So(removed, ShouldBeEmpty)

		files, err := store.List(context.Background())
		So(err, ShouldBeNil)
		So(files, ShouldBeEmpty)
	})
}

func TestFileStore_Resolve(t *testing.T) {
	Convey("Given a store with one export", t, func() {
		dir := t.TempDir()
		store := repository.NewFileStore(dir)
		So(os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o600), ShouldBeNil)

		Convey("Then a bare name resolves inside the directory", func() {
			path, err := store.Resolve("a.txt")
			So(err, ShouldBeNil)
			So(path, ShouldEqual, filepath.Join(dir, "a.txt"))
		})

		Convey("Then missing names are not found", func() {
			_, err := store.Resolve("b.txt")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then traversal attempts are rejected", func() {
			for _, name := range []string{"../a.txt", "sub/a.txt", "..", ""} {
				_, err := store.Resolve(name)
				So(errors.Is(err, repository.ErrInvalidName), ShouldBeTrue)
			}
		})
	})
}

func TestRecordDiff(t *testing.T) {
	Convey("Given consecutive snapshots of one game", t, func() {
		dir := t.TempDir()
		clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
		store := repository.NewFileStore(dir, repository.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}))
		game := catalog.Outlast2()
		ctx := context.Background()

		first, err := store.WriteSnapshot(ctx, sampleSet(), game)
		So(err, ShouldBeNil)
		same, err := store.WriteSnapshot(ctx, sampleSet(), game)
		So(err, ShouldBeNil)

		improved := sampleSet()
		improved.Set("any%", &model.Record{Category: "Any%", DetailedTime: "14:00.000", RawTimeSeconds: 840, RunnerName: "gamma"})
		changed, err := store.WriteSnapshot(ctx, improved, game)
		So(err, ShouldBeNil)

		Convey("Then identical records produce no diff despite new stamps", func() {
			diff, err := repository.RecordDiff(first, same)
			So(err, ShouldBeNil)
			So(diff, ShouldBeEmpty)
		})

		Convey("Then a new record shows up in the diff", func() {
			diff, err := repository.RecordDiff(same, changed)
			So(err, ShouldBeNil)
			So(diff, ShouldContainSubstring, "-Any% : 15:00.000 by: alpha")
			So(diff, ShouldContainSubstring, "+Any% : 14:00.000 by: gamma")
		})

		Convey("Then a missing file is a filesystem error", func() {
			_, err := repository.RecordDiff(filepath.Join(dir, "nope.txt"), changed)
			So(errors.Is(err, repository.ErrFilesystem), ShouldBeTrue)
		})
	})
}
