package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"musicmerge/internal/testsupport"
)

func TestShowCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	writeLoadOrderFixtures(t, env)

	out, _, err := runCLI(t, []string{"show", "Bards.esp"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "== Bards.esp ==")
	requireContains(t, out, "Skyrim.esm")
	requireContains(t, out, "MUSTavernMod")
	requireContains(t, out, "000F1234")

	out, _, err = runCLI(t, []string{"show", "--tracks", filepath.Join(env.dataDir, "Bards.esp")}, env.configPath)
	if err != nil {
		t.Fatalf("show --tracks: %v", err)
	}
	requireContains(t, out, "00000101 02000800")

	out, _, err = runCLI(t, []string{"show", "--json", "Armor.esp"}, env.configPath)
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}
	var view struct {
		Version float32  `json:"version"`
		Author  string   `json:"author"`
		Masters []string `json:"masters"`
		Music   []any    `json:"music"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode show json: %v\n%s", err, out)
	}
	if view.Author != "tester" || len(view.Masters) != 1 || len(view.Music) != 0 {
		t.Fatalf("view = %+v", view)
	}

	if _, _, err := runCLI(t, []string{"show", "Nope.esp"}, env.configPath); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing plugin error = %v", err)
	}
}

func TestLoadOrderCommand(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithGame("Skyrim"),
		testsupport.WithPluginsTxt("Bards.esp", "Gone.esp"),
	)
	writeLoadOrderFixtures(t, env)

	out, _, err := runCLI(t, []string{"load-order", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("load-order: %v", err)
	}
	var entries []loadOrderEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode load order: %v\n%s", err, out)
	}
	want := []struct {
		name    string
		present bool
	}{
		{"Skyrim.esm", true},
		{"Update.esm", false},
		{"Bards.esp", true},
		{"Gone.esp", false},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v", entries)
	}
	for i, w := range want {
		if entries[i].Name != w.name || entries[i].Present != w.present || entries[i].Position != i+1 {
			t.Fatalf("entry %d = %+v, want %+v", i, entries[i], w)
		}
	}

	out, _, err = runCLI(t, []string{"load-order"}, env.configPath)
	if err != nil {
		t.Fatalf("load-order: %v", err)
	}
	requireContains(t, out, "== Load Order ==")
	requireContains(t, out, "Skyrim")
	requireContains(t, out, env.dataDir)
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Data directory: "+env.dataDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestInvalidLogLevelFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"--log-level", "chatty", "load-order"}, env.configPath); err == nil {
		t.Fatal("expected invalid --log-level to fail")
	}
}
