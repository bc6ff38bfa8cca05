package viewing

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

type codeFormat struct {
	firstMin, firstMax   int
	secondMin, secondMax int
}

// codeFormats are picked uniformly: dddd-dddd, ddd-dddd and dddd-dd.
var codeFormats = []codeFormat{
	{firstMin: 1000, firstMax: 9999, secondMin: 1000, secondMax: 9999},
	{firstMin: 100, firstMax: 999, secondMin: 1000, secondMax: 9999},
	{firstMin: 1000, firstMax: 9999, secondMin: 10, secondMax: 99},
}

type AllocatorConfig struct {
	// Seed fixes the random sequence; zero seeds from the clock.
	Seed uint64
	// MaxAttempts caps collision retries; zero retries until a free code is found.
	MaxAttempts int
}

// Allocator hands out display codes that no stored session uses yet.
//
// The lookup and the later insert are not atomic: two allocations racing on the
// same candidate can both pass the lookup. The unique index on the store then
// rejects the second insert with ErrDuplicateIdentifier.
type Allocator struct {
	store       Store
	maxAttempts int
	mu          sync.Mutex
	random      *rand.Rand
}

func NewAllocator(store Store, cfg AllocatorConfig) *Allocator {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Allocator{
		store:       store,
		maxAttempts: cfg.MaxAttempts,
		random:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 1; ; attempt++ {
		code := a.candidate()
		_, err := a.store.FindByUniqueIdentifier(ctx, code)
		if errors.Is(err, ErrSessionNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check unique identifier: %w", err)
		}
		if a.maxAttempts > 0 && attempt >= a.maxAttempts {
			return "", fmt.Errorf("%w after %d attempts", ErrAllocatorExhausted, attempt)
		}
	}
}

func (a *Allocator) candidate() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	format := codeFormats[a.random.IntN(len(codeFormats))]
	first := format.firstMin + a.random.IntN(format.firstMax-format.firstMin+1)
	second := format.secondMin + a.random.IntN(format.secondMax-format.secondMin+1)
	return fmt.Sprintf("%d-%d", first, second)
}
