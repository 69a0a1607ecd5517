package model

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
)

// SystemIndex maps a hostname to the indices of its planets in the backing
// slice, ordered by descending point-estimate mass (rows with unknown mass
// sort last). Building it once replaces the source catalog's per-row table
// rescans.
type SystemIndex map[string][]int

// BuildSystemIndex indexes planets by hostname. It returns an error when two
// rows share the same (hostname, planet-name) identity: the engine refuses to
// proceed with an ambiguous identity mapping.
func BuildSystemIndex(planets []Planet) (SystemIndex, error) {
	idx := make(SystemIndex)
	seen := make(map[[2]string]bool, len(planets))
	for i, p := range planets {
		key := [2]string{p.Hostname, p.Name}
		if seen[key] {
			return nil, eris.Errorf("model: duplicate planet identity %s / %s", p.Hostname, p.Name)
		}
		seen[key] = true
		idx[p.Hostname] = append(idx[p.Hostname], i)
	}
	for host, members := range idx {
		m := members
		sort.SliceStable(m, func(a, b int) bool {
			ma, mb := planets[m[a]].Mass.Val, planets[m[b]].Mass.Val
			switch {
			case math.IsNaN(ma) && math.IsNaN(mb):
				return false
			case math.IsNaN(mb):
				return true
			case math.IsNaN(ma):
				return false
			}
			return ma > mb
		})
		idx[host] = m
	}
	return idx, nil
}

// MostMassive returns the index of the system's most massive planet and true,
// or 0 and false for an unknown hostname.
func (idx SystemIndex) MostMassive(hostname string) (int, bool) {
	members := idx[hostname]
	if len(members) == 0 {
		return 0, false
	}
	return members[0], true
}

// Hosts returns the hostnames in deterministic (sorted) order.
func (idx SystemIndex) Hosts() []string {
	hosts := make([]string, 0, len(idx))
	for h := range idx {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}
