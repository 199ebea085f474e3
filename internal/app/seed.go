package app

import (
	"encoding/json"
	"hash/fnv"
	"math/rand"
	"strconv"
	"strings"
)

// MaxGeneratedSeed bounds seeds produced when the caller supplies none.
const MaxGeneratedSeed = 1<<31 - 1

// ResolveSeed turns a user-facing seed into the shuffle counter start. Integers are used as-is,
// any other text is hashed, and an empty value draws a fresh seed from rng.
func ResolveSeed(raw string, rng *rand.Rand) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return GenerateSeed(rng)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(raw))
	return int64(h.Sum32())
}

// GenerateSeed draws a seed in [1, MaxGeneratedSeed].
func GenerateSeed(rng *rand.Rand) int64 {
	if rng == nil {
		return rand.Int63n(MaxGeneratedSeed) + 1
	}
	return rng.Int63n(MaxGeneratedSeed) + 1
}

// SeedText reads a seed field sent either as a JSON string or a JSON number.
// A missing or null field yields "".
func SeedText(field json.RawMessage) (string, error) {
	if len(field) == 0 || string(field) == "null" {
		return "", nil
	}
	var text string
	if err := json.Unmarshal(field, &text); err == nil {
		return text, nil
	}
	var number json.Number
	if err := json.Unmarshal(field, &number); err != nil {
		return "", err
	}
	return number.String(), nil
}
