package service

import (
	"math/rand"
	"sync"
)

// gameRng is the package-level random source used for move order and
// first-word selection. When nil, the functions below delegate to the
// global math/rand default. Every room worker draws from it, and
// rand.Rand is not safe for concurrent use, so rngMu serializes access.
var (
	rngMu   sync.Mutex
	gameRng *rand.Rand
)

// SeedGameRng sets a deterministic random source for reproducible games.
func SeedGameRng(seed int64) {
	rngMu.Lock()
	defer rngMu.Unlock()
	gameRng = rand.New(rand.NewSource(seed))
}

// ResetGameRng reverts to the default (non-deterministic) global random source.
func ResetGameRng() {
	rngMu.Lock()
	defer rngMu.Unlock()
	gameRng = nil
}

func gameIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	if gameRng != nil {
		return gameRng.Intn(n)
	}
	return rand.Intn(n)
}

func gameShuffle(n int, swap func(i, j int)) {
	rngMu.Lock()
	defer rngMu.Unlock()
	if gameRng != nil {
		gameRng.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}
