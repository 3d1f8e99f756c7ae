package catalog_test

import (
	"errors"
	"testing"

	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given a registry built from definitions", t, func() {
		reg, err := catalog.NewRegistry(
			catalog.CategoryDefinition{Key: "a", RemoteCategoryID: "ida", DisplayName: "A"},
			catalog.CategoryDefinition{Key: "b", RemoteCategoryID: "idb", DisplayName: "B",
				QueryVariables: []catalog.QueryVariable{{VariableID: "v1", ValueID: "x1"}, {VariableID: "v2", ValueID: "x2"}}},
		)
		So(err, ShouldBeNil)

		Convey("Then order and lookups are preserved", func() {
			So(reg.Len(), ShouldEqual, 2)
			defs := reg.Definitions()
			So(defs[0].Key, ShouldEqual, "a")
			So(defs[1].QueryVariables[1].VariableID, ShouldEqual, "v2")

			primary, ok := reg.Primary()
			So(ok, ShouldBeTrue)
			So(primary.Key, ShouldEqual, "a")

			def, err := reg.Lookup("b")
			So(err, ShouldBeNil)
			So(def.DisplayName, ShouldEqual, "B")
		})

		Convey("Then unknown keys fail with ErrUnknownCategory", func() {
			_, err := reg.Lookup("zzz")
			So(errors.Is(err, catalog.ErrUnknownCategory), ShouldBeTrue)
		})

		Convey("Then callers cannot mutate the registry", func() {
			defs := reg.Definitions()
			defs[0].DisplayName = "changed"
			def, _ := reg.Lookup("a")
			So(def.DisplayName, ShouldEqual, "A")
		})
	})

	Convey("Given invalid definitions", t, func() {
		_, err := catalog.NewRegistry(
			catalog.CategoryDefinition{Key: "a", RemoteCategoryID: "x"},
			catalog.CategoryDefinition{Key: "a", RemoteCategoryID: "y"},
		)
		So(err, ShouldNotBeNil)

		_, err = catalog.NewRegistry(catalog.CategoryDefinition{Key: "", RemoteCategoryID: "x"})
		So(err, ShouldNotBeNil)

		So(func() { catalog.MustRegistry(catalog.CategoryDefinition{Key: "a"}) }, ShouldPanic)
	})
}

func TestGames(t *testing.T) {
	Convey("Given the supported games", t, func() {
		games := catalog.Games()

		Convey("Then the three profiles are present in export order", func() {
			So(len(games), ShouldEqual, 3)
			So(games[0].Slug, ShouldEqual, "outlast")
			So(games[1].Slug, ShouldEqual, "whistleblower")
			So(games[2].Slug, ShouldEqual, "outlast2")
		})

		Convey("Then each profile carries its archive identity", func() {
			So(games[0].GameID, ShouldEqual, "76r43l18")
			So(games[0].RemotePath, ShouldEqual, "outlast_world_records_latest.txt")
			So(games[0].Registry.Len(), ShouldEqual, 6)
			So(games[1].FilenamePrefix, ShouldEqual, "outlast_whistleblower_records")
			So(games[1].Registry.Len(), ShouldEqual, 6)
			So(games[2].GameID, ShouldEqual, "w6j0k2dj")
			So(games[2].SourceURL, ShouldEqual, "https://www.speedrun.com/outlast2")
			So(games[2].Registry.Len(), ShouldEqual, 7)
		})

		Convey("Then only Outlast reads dates from the submission stamp", func() {
			So(games[0].DateSource, ShouldEqual, catalog.DateFromSubmitted)
			So(games[1].DateSource, ShouldEqual, catalog.DateFromRun)
			So(games[2].DateSource, ShouldEqual, catalog.DateFromRun)
		})

		Convey("Then every category filters on at least one variable", func() {
			for _, g := range games {
				for _, d := range g.Registry.Definitions() {
					So(len(d.QueryVariables), ShouldBeGreaterThan, 0)
				}
			}
		})

		Convey("Then lookup resolves slugs and rejects unknown ones", func() {
			g, err := catalog.Lookup(games, "outlast2")
			So(err, ShouldBeNil)
			So(g.Name, ShouldEqual, "Outlast 2")

			_, err = catalog.Lookup(games, "amnesia")
			So(errors.Is(err, catalog.ErrUnknownGame), ShouldBeTrue)
		})
	})
}
