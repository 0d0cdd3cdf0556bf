package service

import (
	"math/rand/v2"
	"sync"

	"github.com/ozzus/fulbito/internal/domain/balance"
	"github.com/ozzus/fulbito/internal/domain/models"
)

// SeededSource is a reproducible generator safe for concurrent requests.
type SeededSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rnd: rand.New(rand.NewPCG(seed, seed))}
}

func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// pickIndex maps a draw from rnd onto [0, n).
func pickIndex(rnd balance.RandomSource, n int) int {
	i := int(rnd.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// shuffle is a Fisher-Yates shuffle in place.
func shuffle(players []models.Player, rnd balance.RandomSource) {
	for i := len(players) - 1; i > 0; i-- {
		j := pickIndex(rnd, i+1)
		players[i], players[j] = players[j], players[i]
	}
}
