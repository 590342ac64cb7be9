// Package query remembers library searches and suggests earlier ones while typing.
package query

import (
	"strings"
	"sync"

	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

type record struct {
	Rank  int    `json:"rank"`
	Query string `json:"query"`
}

var cacher = gache.New[map[string]*record](
	&gache.Options{
		Path:       where.Queries(),
		FileSystem: &filesystem.GacheFs{},
	},
)

var (
	mu          sync.Mutex
	suggestions = make(map[string][]*record)
)

// Remember records a search, or raises the rank of one seen before.
// Blank searches are ignored.
func Remember(q string, weight int) error {
	q = sanitize(q)
	if q == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		cached = make(map[string]*record)
	}

	if r, ok := cached[q]; ok {
		r.Rank += weight
	} else {
		cached[q] = &record{Rank: weight, Query: q}
	}

	suggestions = make(map[string][]*record)
	return cacher.Set(cached)
}

// Suggest returns the best earlier search that q could complete to.
func Suggest(q string) mo.Option[string] {
	many := SuggestMany(q)
	if len(many) == 0 {
		return mo.None[string]()
	}
	return mo.Some(many[0])
}

// SuggestMany returns earlier searches fuzzily matching q, highest rank first.
func SuggestMany(q string) []string {
	if !viper.GetBool(key.SearchShowQuerySuggestions) {
		return []string{}
	}

	q = sanitize(q)

	mu.Lock()
	defer mu.Unlock()

	records, ok := suggestions[q]
	if !ok {
		cached, expired, err := cacher.Get()
		if err != nil || expired || cached == nil {
			return []string{}
		}

		records = lo.Filter(lo.Values(cached), func(r *record, _ int) bool {
			return r.Query != q && fuzzy.Match(q, r.Query)
		})
		slices.SortFunc(records, func(a, b *record) int {
			if a.Rank != b.Rank {
				return b.Rank - a.Rank
			}
			return strings.Compare(a.Query, b.Query)
		})

		suggestions[q] = records
	}

	return lo.Map(records, func(r *record, _ int) string {
		return r.Query
	})
}

func sanitize(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
