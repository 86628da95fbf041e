// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestItem_Year(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2010-07-16", "2010"},
		{"1999", "1999"},
		{"", "N/A"},
		{"19", "N/A"},
	}
	for _, tt := range tests {
		if got := (Item{ReleaseDate: tt.date}).Year(); got != tt.want {
			t.Errorf("Year(%q) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestItem_AllGenreIDs(t *testing.T) {
	listing := Item{GenreIDs: []int{28, 12}}
	if got := listing.AllGenreIDs(); !reflect.DeepEqual(got, []int{28, 12}) {
		t.Errorf("listing AllGenreIDs() = %v", got)
	}

	details := Item{
		Genres:   []Genre{{ID: 878, Name: "Science Fiction"}, {ID: 53, Name: "Thriller"}},
		GenreIDs: []int{1},
	}
	if got := details.AllGenreIDs(); !reflect.DeepEqual(got, []int{878, 53}) {
		t.Errorf("details AllGenreIDs() = %v, want Genres to win", got)
	}
	if got := details.GenreNames(); !reflect.DeepEqual(got, []string{"Science Fiction", "Thriller"}) {
		t.Errorf("GenreNames() = %v", got)
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in      string
		wantAny bool
		want    string
	}{
		{"mixed", true, ""},
		{"", true, ""},
		{"MIXED", true, ""},
		{"hindi", false, "hi"},
		{"English", false, "en"},
		{"fr", false, "fr"},
		{" KO ", false, "ko"},
		{"klingon", true, ""},
		{"f1", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseLanguage(tt.in)
			if got.IsAny() != tt.wantAny {
				t.Errorf("IsAny() = %v, want %v", got.IsAny(), tt.wantAny)
			}
			if got.Code() != tt.want {
				t.Errorf("Code() = %q, want %q", got.Code(), tt.want)
			}
		})
	}
}

func TestLanguage_Matches(t *testing.T) {
	hi := movie(1, "Dangal", "hi", "")
	en := movie(2, "Inception", "en", "")

	if !AnyLanguage.Matches(hi) || !AnyLanguage.Matches(en) {
		t.Error("AnyLanguage must match every item")
	}
	if !SpecificLanguage("HI").Matches(hi) {
		t.Error("SpecificLanguage(HI) should match a hi item")
	}
	if SpecificLanguage("hi").Matches(en) {
		t.Error("SpecificLanguage(hi) matched an en item")
	}
	if AnyLanguage.String() != "mixed" || SpecificLanguage("en").String() != "en" {
		t.Errorf("String() = %q / %q", AnyLanguage.String(), SpecificLanguage("en").String())
	}
	var zero Language
	if zero != AnyLanguage {
		t.Error("zero Language is not AnyLanguage")
	}
}

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		w       Weights
		wantErr string
	}{
		{"default", Weights{0.7, 0.3}, ""},
		{"all genre", Weights{1, 0}, ""},
		{"all overview", Weights{0, 1}, ""},
		{"within tolerance", Weights{0.7, 0.305}, ""},
		{"negative", Weights{-0.1, 1.1}, "Weights must be between 0 and 1"},
		{"above one", Weights{1.2, 0}, "Weights must be between 0 and 1"},
		{"nan", Weights{math.NaN(), 0.5}, "Weights must be between 0 and 1"},
		{"sum too low", Weights{0.5, 0.4}, "Weights must sum to 1.0"},
		{"sum too high", Weights{0.6, 0.5}, "Weights must sum to 1.0"},
		{"both zero", Weights{}, "Weights must sum to 1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("Validate() = %v, want *InputError", err)
			}
			if inputErr.Error() != tt.wantErr {
				t.Errorf("message = %q, want %q", inputErr.Error(), tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Error("InputError does not unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if StateFetchCandidateDetails.String() != "fetch_candidate_details" {
		t.Errorf("String() = %q", StateFetchCandidateDetails.String())
	}
	if State(42).String() != "state(42)" {
		t.Errorf("unknown state String() = %q", State(42).String())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{"default is valid", func(*Config) {}, false},
		{"bad default weights", func(c *Config) { c.Weights = Weights{0.9, 0.9} }, true},
		{"zero default top k", func(c *Config) { c.Limits.DefaultTopK = 0 }, true},
		{"max below default", func(c *Config) { c.Limits.MaxTopK = 2 }, true},
		{"negative pool size", func(c *Config) { c.Limits.MinPoolSize = -1 }, true},
		{"zero detail fetches", func(c *Config) { c.Limits.MaxDetailFetches = 0 }, true},
		{"zero attempts", func(c *Config) { c.Retry.Attempts = 0 }, true},
		{"negative delay", func(c *Config) { c.Retry.CallDelay = -1 }, true},
		{"negative backoff", func(c *Config) { c.Retry.ErrorBackoff = -1 }, true},
		{"negative pause", func(c *Config) { c.Pacing.RelatedPause = -1 }, true},
		{"zero batch disables pauses", func(c *Config) { c.Pacing.DetailBatchSize = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestConfig_ResolveTopK(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct{ in, want int }{
		{0, 5}, {-3, 5}, {1, 1}, {12, 12}, {20, 20}, {50, 20},
	}
	for _, tt := range tests {
		if got := cfg.ResolveTopK(tt.in); got != tt.want {
			t.Errorf("ResolveTopK(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	items := []Item{{ID: 3}, {ID: 1}, {ID: 3}, {ID: 2}, {ID: 1}, {ID: 7}}
	got := dedupe(items, 7)
	var ids []int
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	if !reflect.DeepEqual(ids, []int{3, 1, 2}) {
		t.Errorf("dedupe ids = %v, want [3 1 2]", ids)
	}
}

func TestMergeItem(t *testing.T) {
	listing := Item{ID: 5, Title: "Listing Title", Rating: 8.1}
	details := Item{
		ID:          5,
		Title:       "Details Title",
		Language:    "en",
		ReleaseDate: "2014-11-05",
		Overview:    "Explorers travel through a wormhole.",
		Genres:      []Genre{{ID: 878, Name: "Science Fiction"}},
		Rating:      6.0,
	}
	got := mergeItem(listing, details)
	if got.Title != "Listing Title" || got.Rating != 8.1 {
		t.Errorf("listing display fields lost: %+v", got)
	}
	if got.Language != "en" || got.ReleaseDate != "2014-11-05" || got.Overview == "" {
		t.Errorf("empty listing fields not filled from details: %+v", got)
	}
	if len(got.Genres) != 1 || got.Genres[0].ID != 878 {
		t.Errorf("Genres = %v, want details genres", got.Genres)
	}
}
