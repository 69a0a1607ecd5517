package model

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Imputation stages appended to a row's provenance flag.
const (
	StageEccentricity = 1
	StageMass         = 2
	StageInclination  = 3
	StageSMAErr       = 4
	StageObliquity    = 5
)

// Side marks which error bound(s) of a quantity were defaulted.
type Side string

const (
	SideUpper Side = "+"
	SideLower Side = "-"
	SideBoth  Side = "+-"
)

// StageTag is one imputation event on a row.
type StageTag struct {
	Stage int  `json:"stage"`
	Side  Side `json:"side"`
}

// Flag is the append-only provenance record of a planet row. It replaces the
// source catalog's growing string accumulator with an ordered tag list,
// serialized back to the accumulator form only at the output boundary.
type Flag struct {
	tags []StageTag
}

// Append records an imputation stage. Tags are never rewritten or removed.
func (f *Flag) Append(stage int, side Side) {
	f.tags = append(f.tags, StageTag{Stage: stage, Side: side})
}

// Has reports whether any tag with the given stage was recorded.
func (f Flag) Has(stage int) bool {
	for _, t := range f.tags {
		if t.Stage == stage {
			return true
		}
	}
	return false
}

// Len returns the number of recorded tags.
func (f Flag) Len() int {
	return len(f.tags)
}

// Core reports whether the row belongs to the high-confidence sample:
// at most one imputation, and only for obliquity (stage 5).
func (f Flag) Core() bool {
	if len(f.tags) == 0 {
		return true
	}
	return len(f.tags) == 1 && f.tags[0].Stage == StageObliquity
}

// String serializes to the catalog accumulator form, e.g. "0", "01+-", "05+".
func (f Flag) String() string {
	var b strings.Builder
	b.WriteString("0")
	for _, t := range f.tags {
		b.WriteString(strconv.Itoa(t.Stage))
		b.WriteString(string(t.Side))
	}
	return b.String()
}

// ParseFlag rebuilds a Flag from its accumulator form.
func ParseFlag(s string) (Flag, error) {
	var f Flag
	if s == "" || s == "0" {
		return f, nil
	}
	if !strings.HasPrefix(s, "0") {
		return f, eris.Errorf("flag: malformed %q", s)
	}
	rest := s[1:]
	for len(rest) > 0 {
		stage := int(rest[0] - '0')
		if stage < StageEccentricity || stage > StageObliquity {
			return Flag{}, eris.Errorf("flag: bad stage in %q", s)
		}
		rest = rest[1:]
		var side Side
		switch {
		case strings.HasPrefix(rest, string(SideBoth)):
			side = SideBoth
		case strings.HasPrefix(rest, string(SideUpper)):
			side = SideUpper
		case strings.HasPrefix(rest, string(SideLower)):
			side = SideLower
		default:
			return Flag{}, eris.Errorf("flag: bad side in %q", s)
		}
		rest = rest[len(side):]
		f.Append(stage, side)
	}
	return f, nil
}
