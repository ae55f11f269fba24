package verifio

import (
	"context"
	"log/slog"

	"github.com/gnames/dwcagent/internal/ent/gbif"
	"github.com/gnames/dwcagent/internal/ent/kv"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnuuid"
)

var enc = gnfmt.GNjson{}

// verifio wraps a name matcher with a local parse step and a durable
// cache. Names that do not parse as scientific names never reach the
// network; answers are cached under the UUID v5 of the name string.
type verifio struct {
	matcher gbif.Matcher
	cache   kv.KeyVal
	parser  gnparser.GNparser
}

// New returns a caching gbif.Matcher. The cache must be open.
func New(matcher gbif.Matcher, cache kv.KeyVal) gbif.Matcher {
	cfg := gnparser.NewConfig()
	return &verifio{
		matcher: matcher,
		cache:   cache,
		parser:  gnparser.New(cfg),
	}
}

func (v *verifio) MatchName(
	ctx context.Context, name string,
) (gbif.NameMatch, error) {
	parsed := v.parser.ParseName(name)
	if !parsed.Parsed {
		return gbif.NameMatch{MatchType: "NONE"}, nil
	}

	key := []byte(gnuuid.New(name).String())
	cached, err := v.cache.GetValue(key)
	if err != nil {
		slog.Warn("Cannot read name-match cache",
			"error", err, "name", name)
	} else if cached != nil {
		var res gbif.NameMatch
		if err = enc.Decode(cached, &res); err == nil {
			return res, nil
		}
	}

	res, err := v.matcher.MatchName(ctx, name)
	if err != nil {
		return res, err
	}

	if data, err := enc.Encode(res); err == nil {
		if err = v.cache.SetValue(key, data); err != nil {
			slog.Warn("Cannot cache name match", "error", err, "name", name)
		}
	}
	return res, nil
}
