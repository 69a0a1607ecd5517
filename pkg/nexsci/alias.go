package nexsci

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// NormalizeName canonicalizes a system or planet name: NFKC-folds lookalike
// unicode (archive names arrive with non-breaking spaces and typographic
// dashes) and collapses whitespace runs.
func NormalizeName(name string) string {
	s := norm.NFKC.String(name)
	s = strings.ReplaceAll(s, "−", "-")
	return strings.Join(strings.Fields(s), " ")
}

// LoadAliasOverrides reads the operator-maintained alias file mapping
// reported hostnames to canonical ones. A missing file is not an error.
func LoadAliasOverrides(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "nexsci: read alias overrides %s", path)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, eris.Wrapf(err, "nexsci: parse alias overrides %s", path)
	}
	normalized := make(map[string]string, len(overrides))
	for from, to := range overrides {
		normalized[NormalizeName(from)] = NormalizeName(to)
	}
	return normalized, nil
}

// RenamePlanet rewrites a planet name after its host was canonicalized, so
// "Kepler-11b" under oldHost "Kepler-11" follows the host to newHost.
func RenamePlanet(planetName, oldHost, newHost string) string {
	if oldHost == newHost || !strings.HasPrefix(planetName, oldHost) {
		return planetName
	}
	return newHost + planetName[len(oldHost):]
}
