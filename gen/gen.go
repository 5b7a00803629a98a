// Package gen implements synthetic data generators for the list benchmark.
package gen

import (
	"context"
	"image/color"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"git.sr.ht/~gioverse/listbench/model"
	lorem "github.com/drhodes/golorem"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// TitlePrefix precedes the item index in every generated title.
	TitlePrefix = "item "
	// DescToken is repeated to build an item description.
	DescToken = "desc "
	// MaxRepeat is the largest number of DescToken repetitions in a
	// description. Repetitions are drawn uniformly from [0, MaxRepeat].
	MaxRepeat = 10
)

// checkEvery is the number of items generated between context checks.
const checkEvery = 1024

// Generator produces item lists. The zero value is ready to use and draws
// from the global math/rand source.
type Generator struct {
	// Rand is the source of description lengths. If nil, the global source
	// is used. Access to Rand is serialized by the Generator.
	Rand *rand.Rand
	mu   sync.Mutex
}

// New returns a generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{Rand: rand.New(rand.NewSource(seed))}
}

// Generate returns count items with ids 0..count-1 in order. A count of zero
// or less yields an empty list.
func (g *Generator) Generate(count int) []model.Item {
	items, _ := g.GenerateContext(context.Background(), count)
	return items
}

// GenerateContext is like Generate but gives up once ctx is done, returning
// ctx.Err() and no items.
func (g *Generator) GenerateContext(ctx context.Context, count int) ([]model.Item, error) {
	if count < 0 {
		count = 0
	}
	items := make([]model.Item, count)
	for i := range items {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		items[i] = model.Item{
			ID:          i,
			Title:       TitlePrefix + strconv.Itoa(i),
			Description: strings.Repeat(DescToken, g.repeat()),
		}
	}
	return items, nil
}

// repeat draws a repetition count in [0, MaxRepeat].
func (g *Generator) repeat() int {
	if g.Rand == nil {
		return rand.Intn(MaxRepeat + 1)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Rand.Intn(MaxRepeat + 1)
}

// Repeats reports how many DescToken repetitions make up description, and
// whether description is a well formed generated description.
func Repeats(description string) (int, bool) {
	n := strings.Count(description, DescToken)
	return n, len(description) == n*len(DescToken) && n <= MaxRepeat
}

// Details generates the filler text shown in an expanded item card.
func Details(words int) string {
	if words <= 0 {
		return ""
	}
	return lorem.Sentence(words, words)
}

// Accent picks a pleasant random accent color for an item card.
func Accent() color.NRGBA {
	return ToNRGBA(colorful.FastHappyColor().Clamped())
}

// ToNRGBA converts a colorful.Color to the nearest representable color.NRGBA.
func ToNRGBA(c colorful.Color) color.NRGBA {
	r, g, b, a := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
