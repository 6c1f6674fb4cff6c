package pipeline

import (
	"fmt"
	"math/rand/v2"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const runIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var runAdjectives = []string{
	"amber", "brisk", "calm", "clever", "crisp", "daring", "eager", "fluent",
	"gentle", "golden", "hardy", "keen", "lively", "lucid", "mellow", "nimble",
	"patient", "quiet", "rapid", "serene", "steady", "swift", "tidy", "vivid",
}

var runNouns = []string{
	"anvil", "beacon", "canyon", "compass", "delta", "ember", "fjord", "glacier",
	"harbor", "lantern", "meadow", "nebula", "orchard", "pebble", "quarry", "ridge",
	"summit", "thicket", "tundra", "valley", "willow", "zephyr",
}

// NewRunID returns an id like "steady_harbor_V1StGXR8" that tags every log
// line of one pipeline run.
func NewRunID() (string, error) {
	suffix, err := gonanoid.Generate(runIDAlphabet, 8)
	if err != nil {
		return "", fmt.Errorf("failed to generate run id: %w", err)
	}
	return fmt.Sprintf("%s_%s_%s",
		runAdjectives[rand.IntN(len(runAdjectives))],
		runNouns[rand.IntN(len(runNouns))],
		suffix,
	), nil
}
