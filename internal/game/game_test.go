package game_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"musicmerge/internal/game"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want game.Game
	}{
		{"Skyrim Special Edition", game.SkyrimSE},
		{"skyrim special edition", game.SkyrimSE},
		{" SSE ", game.SkyrimSE},
		{"Skyrim", game.Skyrim},
		{"Fallout 4 VR", game.Fallout4VR},
		{"fo4", game.Fallout4},
		{"oblivion", game.Oblivion},
		{"TES3", game.Morrowind},
	}
	for _, tc := range tests {
		got, err := game.Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "Starfield"} {
		if _, err := game.Parse(bad); !errors.Is(err, game.ErrUnknownGame) {
			t.Fatalf("Parse(%q) error = %v, want ErrUnknownGame", bad, err)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, g := range game.All() {
		got, err := game.Parse(g.String())
		if err != nil || got != g {
			t.Fatalf("Parse(%q) = %v, %v", g.String(), got, err)
		}
	}
	if s := game.Game(99).String(); s != "Game(99)" {
		t.Fatalf("unknown game string = %q", s)
	}
}

func TestImplicitModules(t *testing.T) {
	tests := []struct {
		game game.Game
		want []string
	}{
		{game.Skyrim, []string{"Skyrim.esm", "Update.esm"}},
		{game.SkyrimSE, []string{"Skyrim.esm", "Update.esm", "Dawnguard.esm", "HearthFires.esm", "Dragonborn.esm"}},
		{game.Fallout4, []string{"Fallout4.esm"}},
		{game.Oblivion, nil},
	}
	for _, tc := range tests {
		if got := tc.game.ImplicitModules(); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%v implicit = %v, want %v", tc.game, got, tc.want)
		}
	}

	mods := game.Skyrim.ImplicitModules()
	mods[0] = "changed"
	if game.Skyrim.ImplicitModules()[0] != "Skyrim.esm" {
		t.Fatal("ImplicitModules returned shared storage")
	}
}

func TestRegistryKey(t *testing.T) {
	key := game.SkyrimSE.RegistryKey()
	if key != `SOFTWARE\WOW6432Node\Bethesda Softworks\Skyrim Special Edition` {
		t.Fatalf("registry key = %q", key)
	}
	if !strings.HasSuffix(game.Skyrim.RegistryKey(), `\skyrim`) {
		t.Fatalf("skyrim key = %q", game.Skyrim.RegistryKey())
	}
	if game.Game(0).RegistryKey() != "" {
		t.Fatal("unknown game should have no registry key")
	}
}
