// Package blocking holds per-platform cooldowns after bot detection.
package blocking

import (
	"maps"
	"sync"
	"time"

	"fetcharr/internal/domain/logger"
	"fetcharr/internal/models"
)

// BlockContext represents the authentication context a block applies to.
type BlockContext string

// Contexts for blocking.
const (
	BlockContextUnauth BlockContext = "unauth" // No cookies.
	BlockContextCookie BlockContext = "cookie" // Cookies file configured.
)

// ContextFor returns the block context for the configured cookie state.
func ContextFor(cookiesConfigured bool) BlockContext {
	if cookiesConfigured {
		return BlockContextCookie
	}
	return BlockContextUnauth
}

// Breaker records platforms that refused automated requests.
//
// A zero cooldown disables it: nothing is ever reported as blocked.
type Breaker struct {
	mu       sync.RWMutex
	blocked  map[models.PlatformTag]map[BlockContext]time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewBreaker returns a Breaker with the given cooldown.
func NewBreaker(cooldown time.Duration) *Breaker {
	return &Breaker{
		blocked:  make(map[models.PlatformTag]map[BlockContext]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Enabled reports whether blocks are tracked at all.
func (b *Breaker) Enabled() bool {
	return b != nil && b.cooldown > 0
}

// Block marks a platform as blocked for a context.
func (b *Breaker) Block(p models.PlatformTag, context BlockContext) {
	if !b.Enabled() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.blocked[p] == nil {
		b.blocked[p] = make(map[BlockContext]time.Time)
	}
	b.blocked[p][context] = b.now()
	logger.Pl.W("Blocked platform %q for context %q for %v due to bot detection", p, context, b.cooldown)
}

// IsBlocked checks if a platform is blocked for a context.
//
// Returns true if blocked and the cooldown has not expired.
func (b *Breaker) IsBlocked(p models.PlatformTag, context BlockContext) (isBlocked bool, blockedAt time.Time, remaining time.Duration) {
	if !b.Enabled() {
		return false, time.Time{}, 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	blockedTime, exists := b.blocked[p][context]
	if !exists {
		return false, time.Time{}, 0
	}

	unlockTime := blockedTime.Add(b.cooldown)
	now := b.now()
	if now.After(unlockTime) {
		return false, blockedTime, 0
	}
	return true, blockedTime, unlockTime.Sub(now)
}

// Unblock removes a block for one context, or all contexts if context is empty.
func (b *Breaker) Unblock(p models.PlatformTag, context BlockContext) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if context == "" {
		delete(b.blocked, p)
		logger.Pl.S("Unblocked platform %q for all contexts", p)
		return
	}
	if b.blocked[p] != nil {
		delete(b.blocked[p], context)
		if len(b.blocked[p]) == 0 {
			delete(b.blocked, p)
		}
	}
	logger.Pl.S("Unblocked platform %q for context %q", p, context)
}

// CleanExpiredBlocks removes expired blocks and returns how many were removed.
func (b *Breaker) CleanExpiredBlocks() int {
	if !b.Enabled() {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	removed := 0
	for p, contexts := range b.blocked {
		for context, blockedTime := range contexts {
			if now.After(blockedTime.Add(b.cooldown)) {
				delete(contexts, context)
				removed++
				logger.Pl.S("Removed expired block for platform %q (context: %s)", p, context)
			}
		}
		if len(contexts) == 0 {
			delete(b.blocked, p)
		}
	}
	return removed
}

// GetAllBlocked returns a copy of all current blocks.
func (b *Breaker) GetAllBlocked() map[models.PlatformTag]map[BlockContext]time.Time {
	result := make(map[models.PlatformTag]map[BlockContext]time.Time)
	if b == nil {
		return result
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	for p, contexts := range b.blocked {
		result[p] = make(map[BlockContext]time.Time, len(contexts))
		maps.Copy(result[p], contexts)
	}
	return result
}
