package nexsci

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Kepler-11", "Kepler-11"},
		{"collapses spaces", "GJ   876", "GJ 876"},
		{"trims", "  HD 10180 ", "HD 10180"},
		{"non-breaking space", "Kepler 11", "Kepler 11"},
		{"unicode minus", "2MASS J1207−3932", "2MASS J1207-3932"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestLoadAliasOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("KOI-157: Kepler-11\n\"Gliese  876\": GJ 876\n"), 0o644))

	overrides, err := LoadAliasOverrides(path)
	require.NoError(t, err)

	assert.Equal(t, "Kepler-11", overrides["KOI-157"])
	assert.Equal(t, "GJ 876", overrides["Gliese 876"], "keys are normalized on load")
}

func TestLoadAliasOverrides_MissingFileOK(t *testing.T) {
	overrides, err := LoadAliasOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, overrides)

	overrides, err = LoadAliasOverrides("")
	require.NoError(t, err)
	assert.Nil(t, overrides)
}

func TestLoadAliasOverrides_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := LoadAliasOverrides(path)
	assert.Error(t, err)
}

func TestRenamePlanet(t *testing.T) {
	assert.Equal(t, "Kepler-11 b", RenamePlanet("KOI-157 b", "KOI-157", "Kepler-11"))
	assert.Equal(t, "WASP-12 b", RenamePlanet("WASP-12 b", "WASP-12", "WASP-12"), "same host is a no-op")
	assert.Equal(t, "TOI-700 d", RenamePlanet("TOI-700 d", "KOI-157", "Kepler-11"), "non-matching prefix untouched")
}
