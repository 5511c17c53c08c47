// Package fallback produces offline replies when no provider is available
// or a provider call fails. Respond is pure given its random source, so a
// seeded source makes every reply reproducible.
package fallback

import (
	"math/rand/v2"
	"strings"
	"sync"

	"cosmic/model"
)

// Rand is the randomness Respond needs. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// keywordRule maps any of its keywords, matched as case-insensitive
// substrings, to a fixed reply.
type keywordRule struct {
	keywords []string
	reply    string
}

// Rules are checked in order; the first hit wins.
var keywordRules = []keywordRule{
	{
		keywords: []string{"planet", "earth", "mars"},
		reply:    "🪐 Planets are fascinating worlds! Each one has unique features - Earth has life, Mars has the largest volcano in the solar system, and Jupiter has a Great Red Spot storm larger than Earth!",
	},
	{
		keywords: []string{"moon", "satellite"},
		reply:    "🌙 Moons are incredible! Earth's Moon affects our tides, Jupiter has over 80 moons, and Saturn's moon Titan has lakes of liquid methane!",
	},
	{
		keywords: []string{"sun", "star"},
		reply:    "☀️ Our Sun is a star that's been burning for 4.6 billion years! It's so massive that it contains 99.86% of all mass in our solar system!",
	},
	{
		keywords: []string{"space", "universe"},
		reply:    "🌌 The universe is vast beyond imagination! Our solar system is just one of billions in the Milky Way galaxy, which itself is one of trillions of galaxies!",
	},
}

// Respond returns the offline reply for lastUserMessage under tag.
//
// A keyword hit returns that keyword's sentence and never consults rng.
// Otherwise the reply is drawn uniformly from the tag's pool; unknown tags
// use the general pool.
func Respond(lastUserMessage string, tag model.ContextTag, rng Rand) string {
	if reply, ok := MatchKeyword(lastUserMessage); ok {
		return reply
	}

	pool := Pool(tag)
	return pool[rng.IntN(len(pool))]
}

// MatchKeyword reports the keyword sentence for message, if any.
func MatchKeyword(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reply, true
			}
		}
	}
	return "", false
}

// Generator owns a seeded source so the facade can share one across
// goroutines. The lock covers only the source.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a Generator whose sequence is fixed by seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed))}
}

// NewRandomGenerator returns a Generator seeded from the runtime.
func NewRandomGenerator() *Generator {
	return NewGenerator(rand.Uint64())
}

// IntN implements Rand.
func (g *Generator) IntN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// Respond is Respond with g as the random source.
func (g *Generator) Respond(lastUserMessage string, tag model.ContextTag) string {
	return Respond(lastUserMessage, tag, g)
}

// Result wraps a reply in the normalized result shape.
func Result(content string) *model.Result {
	return &model.Result{
		Content:    content,
		TokensUsed: 0,
		Model:      model.FallbackModel,
	}
}
