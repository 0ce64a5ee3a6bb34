package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/vovakirdan/tilerules/internal/levels"
	"github.com/vovakirdan/tilerules/internal/registry"
	"github.com/vovakirdan/tilerules/internal/storage"
	"github.com/vovakirdan/tilerules/internal/world"
)

// errUnknownScenario is returned when an argument is neither a registered
// scenario nor a readable file.
var errUnknownScenario = errors.New("unknown scenario")

// loadScenario resolves a scenario id or a path to a scenario file.
func loadScenario(arg string) (levels.Scenario, error) {
	if registry.Exists(arg) {
		return registry.Create(arg)
	}
	if _, err := os.Stat(arg); err == nil {
		return levels.LoadPath(arg)
	}
	return levels.Scenario{}, fmt.Errorf("%w %q (run 'tilerules list' to see available scenarios)", errUnknownScenario, arg)
}

// startWorld returns the world a command starts from: the saved snapshot
// when resume is set, otherwise the scenario's initial world. The --seed
// flag, then the config seed, override the scenario seed.
func startWorld(sc levels.Scenario, resume bool) (world.World, error) {
	if resume {
		snap, err := storage.ReadSnapshot(storage.SnapshotPath(snapshotDir(), sc.ID))
		if err != nil {
			return world.World{}, err
		}
		if snap.Header.ScenarioID != sc.ID {
			return world.World{}, fmt.Errorf("snapshot belongs to scenario %q", snap.Header.ScenarioID)
		}
		logger.Debug("resumed snapshot", "scenario", sc.ID, "tick", snap.Header.Tick)
		return snap.World, nil
	}

	w := sc.NewWorld()
	switch {
	case flagSeed != 0:
		w.Seed = flagSeed
	case cfg.Engine.Seed != 0:
		w.Seed = cfg.Engine.Seed
	}
	return w, nil
}

// saveWorld writes the snapshot resume reads.
func saveWorld(sc levels.Scenario, w world.World) (string, error) {
	path := storage.SnapshotPath(snapshotDir(), sc.ID)
	return path, storage.WriteSnapshot(path, storage.NewSnapshot(sc.ID, w))
}

// findRule looks a rule up across all characters of a scenario. When
// character is set only that character is searched.
func findRule(sc levels.Scenario, character, ruleID string) (*world.Rule, string, error) {
	ids := make([]string, 0, len(sc.Characters))
	for id := range sc.Characters {
		if character == "" || id == character {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		if r, ok := sc.Characters[id].FindRule(ruleID); ok {
			return r, id, nil
		}
	}
	if character != "" && len(ids) == 0 {
		return nil, "", fmt.Errorf("scenario %s has no character %q", sc.ID, character)
	}
	return nil, "", fmt.Errorf("scenario %s has no rule %q", sc.ID, ruleID)
}
