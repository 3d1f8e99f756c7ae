package catalog

import "fmt"

// Layouts accepted for GameProfile.DateLayout.
const (
	DateISO  = "2006-01-02"
	DateLong = "January 02, 2006"
)

// DateSource selects which run field supplies the submission date.
type DateSource int

const (
	// DateFromRun reads the run's "date" and falls back to "submitted".
	DateFromRun DateSource = iota
	// DateFromSubmitted reads only the "submitted" timestamp.
	DateFromSubmitted
)

// GameProfile parameterizes the export pipeline for one game.
type GameProfile struct {
	Slug           string    // route and CLI identifier
	Name           string    // human-readable title
	GameID         string    // leaderboard game id
	Registry       *Registry // tracked categories
	SourceURL      string    // public leaderboard page quoted in snapshots
	FilenamePrefix string    // snapshot file prefix
	RemotePath     string    // fixed path of the published blob
	DateLayout     string    // submission date rendering
	DateSource     DateSource
}

const (
	outlastGameID  = "76r43l18"
	outlast2GameID = "w6j0k2dj"
)

// Outlast returns the main-game profile.
func Outlast() GameProfile {
	return GameProfile{
		Slug:           "outlast",
		Name:           "Outlast",
		GameID:         outlastGameID,
		SourceURL:      "https://www.speedrun.com/outlast",
		FilenamePrefix: "outlast_world_records",
		RemotePath:     "outlast_world_records_latest.txt",
		DateLayout:     DateISO,
		DateSource:     DateFromSubmitted,
		Registry: MustRegistry(
			CategoryDefinition{Key: "any%", RemoteCategoryID: "w20wryod", DisplayName: "Any%",
				QueryVariables: []QueryVariable{{"onv639m8", "gq7nyep1"}}},
			CategoryDefinition{Key: "all_chapters", RemoteCategoryID: "vdoor39d", DisplayName: "All Chapters",
				QueryVariables: []QueryVariable{{"wl36qj6l", "jq648r71"}}},
			CategoryDefinition{Key: "glitchless", RemoteCategoryID: "wkpo8v82", DisplayName: "Glitchless",
				QueryVariables: []QueryVariable{{"onvvxkwn", "4qyg584q"}, {"e8myk7x8", "81052z5q"}}},
			CategoryDefinition{Key: "no_oob", RemoteCategoryID: "mkezgrnk", DisplayName: "No OOB",
				QueryVariables: []QueryVariable{{"68kyoo3l", "qvvvjw6q"}, {"rn11qypn", "81p7rok1"}}},
			CategoryDefinition{Key: "100%", RemoteCategoryID: "wk67xvpd", DisplayName: "100%",
				QueryVariables: []QueryVariable{{"2lgzpeo8", "mlnygmd1"}}},
			CategoryDefinition{Key: "insane", RemoteCategoryID: "zdn45xxk", DisplayName: "Insane",
				QueryVariables: []QueryVariable{{"2lgeojo8", "lx5yv8g1"}, {"ylpv5ydl", "z19406kl"}}},
		),
	}
}

// Whistleblower returns the DLC profile. It shares the main game's board.
func Whistleblower() GameProfile {
	return GameProfile{
		Slug:           "whistleblower",
		Name:           "Outlast: Whistleblower",
		GameID:         outlastGameID,
		SourceURL:      "https://www.speedrun.com/outlast",
		FilenamePrefix: "outlast_whistleblower_records",
		RemotePath:     "outlast_whistleblower_records_latest.txt",
		DateLayout:     DateLong,
		Registry: MustRegistry(
			CategoryDefinition{Key: "any", RemoteCategoryID: "w20wryod", DisplayName: "Any%",
				QueryVariables: []QueryVariable{{"onv639m8", "21gjkr61"}}},
			CategoryDefinition{Key: "all_chapters", RemoteCategoryID: "vdoor39d", DisplayName: "All Chapters",
				QueryVariables: []QueryVariable{{"wl36qj6l", "5lmx7641"}}},
			CategoryDefinition{Key: "glitchless", RemoteCategoryID: "wkpo8v82", DisplayName: "Glitchless",
				QueryVariables: []QueryVariable{{"onvvxkwn", "4qyg584q"}, {"e8myk7x8", "5lmx7k41"}}},
			CategoryDefinition{Key: "no_oob", RemoteCategoryID: "mkezgrnk", DisplayName: "No OOB",
				QueryVariables: []QueryVariable{{"68kyoo3l", "qvvvjw6q"}, {"rn11qypn", "xqkrp0y1"}}},
			CategoryDefinition{Key: "100", RemoteCategoryID: "wk67xvpd", DisplayName: "100%",
				QueryVariables: []QueryVariable{{"2lgzpeo8", "9qjzpng1"}}},
			CategoryDefinition{Key: "insane", RemoteCategoryID: "zdn45xxk", DisplayName: "Insane",
				QueryVariables: []QueryVariable{{"2lgeojo8", "lx5yv8g1"}, {"ylpv5ydl", "p125grk1"}}},
		),
	}
}

// Outlast2 returns the sequel's profile. Every category is filtered to PC
// except No Checkpoint Killing, which uses its own variable.
func Outlast2() GameProfile {
	pc := []QueryVariable{{"onv3gr8m", "rqvvp8yq"}}
	return GameProfile{
		Slug:           "outlast2",
		Name:           "Outlast 2",
		GameID:         outlast2GameID,
		SourceURL:      "https://www.speedrun.com/outlast2",
		FilenamePrefix: "outlast2_records",
		RemotePath:     "outlast2_records_latest.txt",
		DateLayout:     DateLong,
		Registry: MustRegistry(
			CategoryDefinition{Key: "any%", RemoteCategoryID: "5dwy61ek", DisplayName: "Any%", QueryVariables: pc},
			CategoryDefinition{Key: "nck", RemoteCategoryID: "9kvn1w0d", DisplayName: "No Checkpoint Killing",
				QueryVariables: []QueryVariable{{"6nj5205l", "5lm0wz81"}}},
			CategoryDefinition{Key: "glitchless", RemoteCategoryID: "mkey0p62", DisplayName: "Glitchless", QueryVariables: pc},
			CategoryDefinition{Key: "100%", RemoteCategoryID: "zd3lv6nd", DisplayName: "100%", QueryVariables: pc},
			CategoryDefinition{Key: "any%60fps", RemoteCategoryID: "jdzog7x2", DisplayName: "Any% (60 FPS)", QueryVariables: pc},
			CategoryDefinition{Key: "any%nostamina", RemoteCategoryID: "wkpm9o0k", DisplayName: "Any% No Stamina", QueryVariables: pc},
			CategoryDefinition{Key: "insane", RemoteCategoryID: "9kvjqm0k", DisplayName: "Insane", QueryVariables: pc},
		),
	}
}

// Games returns every supported profile in export order.
func Games() []GameProfile {
	return []GameProfile{Outlast(), Whistleblower(), Outlast2()}
}

// Lookup finds a profile by slug within games.
func Lookup(games []GameProfile, slug string) (GameProfile, error) {
	for _, g := range games {
		if g.Slug == slug {
			return g, nil
		}
	}
	return GameProfile{}, fmt.Errorf("%w: %s", ErrUnknownGame, slug)
}
