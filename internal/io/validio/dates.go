package validio

import (
	"strings"
	"time"

	"github.com/gnames/dwcagent/internal/ent/dates"
	"github.com/gnames/dwcagent/internal/ent/validate"
	"github.com/gnames/dwcagent/pkg/ent/grid"
)

// checkEventDates normalizes eventDate values to ISO 8601 and flags the
// rows it cannot parse. Every value is tried as a single date first,
// so slash-formatted dates like "2020/03" stay dates; only on failure
// is the value split once into a "start/end" range, where both sides
// must parse. Dates in the future are a separate warning, not a parse
// failure.
func (v *validio) checkEventDates(
	g *grid.Grid, rep *validate.TableReport,
) {
	const term = "eventDate"
	if !g.HasCol(term) {
		return
	}
	now := v.clock()
	values := g.Col(term)
	var failed, future []int
	for i, val := range values {
		val = strings.TrimSpace(val)
		if val == "" {
			failed = append(failed, i)
			continue
		}
		normalized, isFuture, ok := normalizeEventDate(val, now)
		if !ok {
			failed = append(failed, i)
			continue
		}
		values[i] = normalized
		if isFuture {
			future = append(future, i)
		}
	}
	g.SetCol(term, values)
	if len(failed) > 0 {
		rep.FieldErrors[term] = failed
	}
	if len(future) > 0 {
		rep.FieldErrors[validate.FieldEventDateFuture] = future
	}
}

func normalizeEventDate(
	val string, now time.Time,
) (string, bool, bool) {
	if t, err := dates.Parse(val); err == nil {
		return t.Format(dates.ISO), t.After(now), true
	}
	parts := strings.SplitN(val, "/", 2)
	if len(parts) < 2 {
		return "", false, false
	}
	res := make([]string, len(parts))
	var future bool
	for i, part := range parts {
		t, err := dates.Parse(strings.TrimSpace(part))
		if err != nil {
			return "", false, false
		}
		if t.After(now) {
			future = true
		}
		res[i] = t.Format(dates.ISO)
	}
	return strings.Join(res, "/"), future, true
}
