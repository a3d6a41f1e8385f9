package game

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ErrUnknownGame reports a game name outside the catalogue.
var ErrUnknownGame = errors.New("unknown game")

// Game identifies a supported title.
type Game int

const (
	Morrowind Game = iota + 1
	Oblivion
	Skyrim
	SkyrimSE
	SkyrimVR
	Fallout3
	Fallout4
	Fallout4VR
)

type info struct {
	name     string
	aliases  []string
	localDir string
	registry string
	implicit []string
	asterisk bool
}

var catalogue = map[Game]info{
	Morrowind: {
		name:     "Morrowind",
		aliases:  []string{"tes3"},
		registry: "Morrowind",
	},
	Oblivion: {
		name:     "Oblivion",
		aliases:  []string{"tes4"},
		localDir: "Oblivion",
		registry: "Oblivion",
	},
	Skyrim: {
		name:     "Skyrim",
		aliases:  []string{"tes5", "skyrimle"},
		localDir: "Skyrim",
		registry: "skyrim",
		implicit: []string{"Skyrim.esm", "Update.esm"},
	},
	SkyrimSE: {
		name:     "Skyrim Special Edition",
		aliases:  []string{"sse", "skyrimse"},
		localDir: "Skyrim Special Edition",
		registry: "Skyrim Special Edition",
		implicit: []string{"Skyrim.esm", "Update.esm", "Dawnguard.esm", "HearthFires.esm", "Dragonborn.esm"},
		asterisk: true,
	},
	SkyrimVR: {
		name:     "Skyrim VR",
		aliases:  []string{"skyrimvr"},
		localDir: "Skyrim VR",
		registry: "Skyrim VR",
		implicit: []string{"Skyrim.esm", "Update.esm", "Dawnguard.esm", "HearthFires.esm", "Dragonborn.esm", "SkyrimVR.esm"},
		asterisk: true,
	},
	Fallout3: {
		name:     "Fallout 3",
		aliases:  []string{"fo3", "fallout3"},
		localDir: "Fallout3",
		registry: "Fallout3",
	},
	Fallout4: {
		name:     "Fallout 4",
		aliases:  []string{"fo4", "fallout4"},
		localDir: "Fallout4",
		registry: "Fallout4",
		implicit: []string{"Fallout4.esm"},
		asterisk: true,
	},
	Fallout4VR: {
		name:     "Fallout 4 VR",
		aliases:  []string{"fo4vr", "fallout4vr"},
		localDir: "Fallout4VR",
		registry: "Fallout 4 VR",
		implicit: []string{"Fallout4.esm", "Fallout4_VR.esm"},
		asterisk: true,
	},
}

// All returns every catalogued game in declaration order.
func All() []Game {
	return []Game{Morrowind, Oblivion, Skyrim, SkyrimSE, SkyrimVR, Fallout3, Fallout4, Fallout4VR}
}

// Parse matches name against display names and short aliases, ignoring case.
func Parse(name string) (Game, error) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))
	if want == "" {
		return 0, fmt.Errorf("%w: empty name", ErrUnknownGame)
	}
	for _, g := range All() {
		meta := catalogue[g]
		if fold.String(meta.name) == want {
			return g, nil
		}
		for _, alias := range meta.aliases {
			if alias == want {
				return g, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGame, name)
}

func (g Game) String() string {
	if meta, ok := catalogue[g]; ok {
		return meta.name
	}
	return fmt.Sprintf("Game(%d)", int(g))
}

// ImplicitModules lists the master files the game loads without them
// appearing in plugins.txt, in load order.
func (g Game) ImplicitModules() []string {
	return append([]string(nil), catalogue[g].implicit...)
}

// UsesAsterisk reports whether plugins.txt marks enabled entries with a
// leading '*'. Older titles list only enabled plugins.
func (g Game) UsesAsterisk() bool {
	return catalogue[g].asterisk
}

// RegistryKey is the HKLM subkey holding the "installed path" value.
func (g Game) RegistryKey() string {
	meta, ok := catalogue[g]
	if !ok {
		return ""
	}
	return `SOFTWARE\WOW6432Node\Bethesda Softworks\` + meta.registry
}

// HasPluginsTxt reports whether the game keeps its load order in plugins.txt.
// Morrowind uses Morrowind.ini instead.
func (g Game) HasPluginsTxt() bool {
	return catalogue[g].localDir != ""
}
