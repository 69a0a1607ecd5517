package pipeline

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfield-labs/exonamd/internal/config"
	"github.com/starfield-labs/exonamd/internal/model"
	"github.com/starfield-labs/exonamd/internal/store"
)

// fakeArchive serves a canned table and alias map.
type fakeArchive struct {
	planets   []model.Planet
	aliases   map[string]string
	lastSince string
	fetches   int
}

func (f *fakeArchive) ConfirmedPlanets(ctx context.Context, since string, minPlanets int) ([]model.Planet, error) {
	f.lastSince = since
	f.fetches++
	if since != "" {
		return nil, nil // nothing newer in the canned table
	}
	out := make([]model.Planet, len(f.planets))
	copy(out, f.planets)
	return out, nil
}

func (f *fakeArchive) ResolveHost(ctx context.Context, hostname string) (string, error) {
	if canonical, ok := f.aliases[hostname]; ok {
		return canonical, nil
	}
	return hostname, nil
}

// fakePredictor returns a fixed spread around 2x the radius.
type fakePredictor struct{ calls int }

func (f *fakePredictor) PredictMass(ctx context.Context, radius, sigma float64) ([]float64, error) {
	f.calls++
	center := 2 * radius
	out := make([]float64, 100)
	for i := range out {
		out[i] = center + float64(i-50)*0.01
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Archive:  config.ArchiveConfig{MinPlanets: 2},
		MC:       config.MCConfig{Samples: 500, Threshold: 100, Seed: 42},
		Pipeline: config.PipelineConfig{Workers: 2, CoreOnly: true},
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func quantity(val, err1, err2 float64) model.Quantity {
	return model.Quantity{Val: val, Err1: err1, Err2: err2}
}

func TestCurate_ResolvesAliasesAndSolvesRows(t *testing.T) {
	b := model.NewPlanet("KOI-157", "KOI-157 b")
	b.DefaultFlag = 1
	b.RowUpdate = "2024-03-01"
	b.SyPNum = 2
	b.StRad.Val = 1.0
	b.SMARatio = 10.0 // sma follows from the ratio triad

	c := model.NewPlanet("KOI-157", "KOI-157 c")
	c.DefaultFlag = 1
	c.RowUpdate = "2024-03-01"
	c.SyPNum = 2

	archive := &fakeArchive{
		planets: []model.Planet{b, c},
		aliases: map[string]string{"KOI-157": "Kepler-11"},
	}
	p := New(testConfig(), newTestStore(t), archive, &fakePredictor{})

	planets, err := p.Curate(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, planets, 2)

	assert.Equal(t, "Kepler-11", planets[0].Hostname)
	assert.Equal(t, "Kepler-11 b", planets[0].Name)
	assert.InDelta(t, 0.0465, planets[0].SMA.Val, 1e-4)
}

func TestCurate_IncrementalUsesHighWaterMark(t *testing.T) {
	b := model.NewPlanet("X", "X b")
	b.DefaultFlag = 1
	b.RowUpdate = "2024-03-01"

	archive := &fakeArchive{planets: []model.Planet{b}}
	st := newTestStore(t)
	p := New(testConfig(), st, archive, &fakePredictor{})
	ctx := context.Background()

	first, err := p.Curate(ctx, false)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Empty(t, archive.lastSince, "no snapshot yet means a full fetch")

	second, err := p.Curate(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", archive.lastSince, "one day of slack before the stored mark")
	assert.Len(t, second, 1, "empty delta keeps the previous rows")
}

func interpInput() []model.Planet {
	// System X: canonical rows plus a stale extra solution for X b.
	xb := model.NewPlanet("X", "X b")
	xb.DefaultFlag = 1
	xb.SyPNum = 2
	xb.Mass = quantity(5, 0.5, -0.5)
	xb.SMA = quantity(0.1, 0.005, -0.005)
	xb.Ecc = quantity(0.1, 0.02, -0.02)
	xb.Incl = quantity(88, 0.5, -0.5)

	xbAlt := model.NewPlanet("X", "X b")
	xbAlt.Mass = quantity(6, 0.5, -0.5)

	xc := model.NewPlanet("X", "X c")
	xc.DefaultFlag = 1
	xc.SyPNum = 2
	xc.Mass = quantity(2, 0.3, -0.3)
	xc.SMA = quantity(0.3, math.NaN(), math.NaN())

	// System Y: one planet can never get a mass, so Y drops out entirely.
	yb := model.NewPlanet("Y", "Y b")
	yb.DefaultFlag = 1
	yb.SyPNum = 2
	yb.SMA = quantity(0.2, 0.01, -0.01)

	yc := model.NewPlanet("Y", "Y c")
	yc.DefaultFlag = 1
	yc.SyPNum = 2
	yc.Mass = quantity(3, 0.1, -0.1)
	yc.SMA = quantity(0.5, 0.01, -0.01)

	return []model.Planet{xb, xbAlt, xc, yb, yc}
}

func TestInterp_CollapsesImputesAndGates(t *testing.T) {
	p := New(testConfig(), newTestStore(t), &fakeArchive{}, &fakePredictor{})

	planets, err := p.Interp(context.Background(), interpInput())
	require.NoError(t, err)
	require.Len(t, planets, 2, "system Y dropped, duplicate solution collapsed")

	byName := map[string]model.Planet{}
	for _, pl := range planets {
		byName[pl.Name] = pl
	}

	xb := byName["X b"]
	assert.Equal(t, 5.0, xb.Mass.Val, "canonical solution wins over the alternative")
	assert.True(t, xb.Flag.Core(), "fully reported row stays core after the obliquity default")
	assert.Equal(t, 0.0, xb.RelIncl.Val, "most massive planet is its own reference")
	assert.Equal(t, xb.RelIncl.Val, xb.TrueObliq.Val)

	xc := byName["X c"]
	// 0.63 * 2^(-1.02)
	assert.InDelta(t, 0.3107, xc.Ecc.Val, 1e-3)
	assert.True(t, xc.Flag.Has(model.StageEccentricity))
	assert.Equal(t, 88.0, xc.Incl.Val, "inclination copied from the most massive reporting planet")
	assert.True(t, xc.Flag.Has(model.StageInclination))
	assert.Equal(t, 0.0, xc.SMA.Err1, "missing sma errors zeroed")
	assert.True(t, xc.Flag.Has(model.StageSMAErr))
	assert.False(t, xc.Flag.Core())
}

func TestInterp_QueriesPredictorInsideGate(t *testing.T) {
	xb := model.NewPlanet("X", "X b")
	xb.DefaultFlag = 1
	xb.SyPNum = 2
	xb.Radius = quantity(2.0, 0.1, -0.1) // mass missing, radius in (0.5, 6)
	xb.SMA = quantity(0.1, 0.005, -0.005)
	xb.Ecc = quantity(0.1, 0.02, -0.02)
	xb.Incl = quantity(90, 0.1, -0.1)

	xc := model.NewPlanet("X", "X c")
	xc.DefaultFlag = 1
	xc.SyPNum = 2
	xc.Mass = quantity(3, 0.1, -0.1)
	xc.SMA = quantity(0.3, 0.01, -0.01)
	xc.Ecc = quantity(0.05, 0.01, -0.01)
	xc.Incl = quantity(89, 0.1, -0.1)

	predictor := &fakePredictor{}
	p := New(testConfig(), newTestStore(t), &fakeArchive{}, predictor)

	planets, err := p.Interp(context.Background(), []model.Planet{xb, xc})
	require.NoError(t, err)
	require.Len(t, planets, 2)

	assert.Equal(t, 1, predictor.calls)
	byName := map[string]model.Planet{}
	for _, pl := range planets {
		byName[pl.Name] = pl
	}
	got := byName["X b"]
	assert.InDelta(t, 4.0, got.Mass.Val, 0.1, "median of the predictor distribution")
	assert.True(t, got.Flag.Has(model.StageMass))
}

func TestInterp_NoCuratedSnapshot(t *testing.T) {
	p := New(testConfig(), newTestStore(t), &fakeArchive{}, &fakePredictor{})

	_, err := p.Interp(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no curated snapshot")
}

func namdInput() []model.Planet {
	mk := func(host, name string, mass, sma, ecc, rel, obl float64) model.Planet {
		p := model.NewPlanet(host, name)
		p.DefaultFlag = 1
		p.SyPNum = 2
		p.Mass = quantity(mass, 0.1, -0.1)
		p.SMA = quantity(sma, 0.001, -0.001)
		p.Ecc = quantity(ecc, 0.01, -0.01)
		p.Incl = quantity(89, 0.1, -0.1)
		p.RelIncl = quantity(rel, 0.1, -0.1)
		p.TrueObliq = quantity(obl, 0.1, -0.1)
		return p
	}

	xb := mk("X", "X b", 5, 0.1, 0.1, 0, 1)
	xc := mk("X", "X c", 2, 0.3, 0.2, 3, 4)

	zb := mk("Z", "Z b", 4, 0.2, 0.15, 0, 2)
	zb.Flag.Append(model.StageMass, model.SideBoth) // heavily imputed
	zc := mk("Z", "Z c", 1, 0.6, 0.05, 2, 3)

	return []model.Planet{xb, xc, zb, zc}
}

func TestNAMD_ComputesAndRestrictsToCore(t *testing.T) {
	st := newTestStore(t)
	p := New(testConfig(), st, &fakeArchive{}, &fakePredictor{})
	ctx := context.Background()

	planets, err := p.NAMD(ctx, namdInput())
	require.NoError(t, err)
	require.Len(t, planets, 2, "system Z carries a mass imputation and leaves the core sample")

	for _, pl := range planets {
		assert.Equal(t, "X", pl.Hostname)
		assert.False(t, math.IsNaN(pl.NAMDRel))
		assert.False(t, math.IsNaN(pl.NAMDAbs))
		assert.Greater(t, pl.NAMDRelMC.N, 0)
		assert.LessOrEqual(t, pl.NAMDRelMC.Q16, pl.NAMDRelMC.Q50)
		assert.LessOrEqual(t, pl.NAMDRelMC.Q50, pl.NAMDRelMC.Q84)
	}
	assert.NotEqual(t, planets[0].NAMDRel, planets[0].NAMDAbs)

	_, snap, err := st.LoadSnapshot(ctx, store.StageNAMD)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.RowCount)
}

func TestNAMD_KeepAllSystems(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.CoreOnly = false
	p := New(cfg, newTestStore(t), &fakeArchive{}, &fakePredictor{})

	planets, err := p.NAMD(context.Background(), namdInput())
	require.NoError(t, err)
	assert.Len(t, planets, 4)
}

func TestRun_EndToEnd(t *testing.T) {
	b := model.NewPlanet("X", "X b")
	b.DefaultFlag = 1
	b.RowUpdate = "2024-03-01"
	b.SyPNum = 2
	b.Mass = quantity(5, 0.5, -0.5)
	b.SMA = quantity(0.1, 0.005, -0.005)
	b.Ecc = quantity(0.1, 0.02, -0.02)
	b.Incl = quantity(88, 0.5, -0.5)

	c := model.NewPlanet("X", "X c")
	c.DefaultFlag = 1
	c.RowUpdate = "2024-03-01"
	c.SyPNum = 2
	c.Mass = quantity(2, 0.3, -0.3)
	c.SMA = quantity(0.3, 0.01, -0.01)
	c.Ecc = quantity(0.2, 0.05, -0.05)
	c.Incl = quantity(89.5, 0.3, -0.3)

	st := newTestStore(t)
	archive := &fakeArchive{planets: []model.Planet{b, c}}
	p := New(testConfig(), st, archive, &fakePredictor{})
	ctx := context.Background()

	require.NoError(t, p.Run(ctx, true))

	planets, snap, err := st.LoadSnapshot(ctx, store.StageNAMD)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, planets, 2)

	assert.False(t, math.IsNaN(planets[0].NAMDRel))
	assert.Equal(t, planets[0].NAMDRel, planets[1].NAMDRel)
	assert.Equal(t, "05+-", planets[0].Flag.String())
	assert.Greater(t, planets[0].NAMDRelMC.N, 0)
}

func TestMergeKeepLast(t *testing.T) {
	old := model.NewPlanet("X", "X b")
	old.DefaultFlag = 1
	old.RowUpdate = "2024-01-01"
	old.Mass.Val = 1

	updated := old
	updated.Mass.Val = 2

	fresh := model.NewPlanet("X", "X c")
	fresh.DefaultFlag = 1
	fresh.RowUpdate = "2024-02-01"

	out := mergeKeepLast([]model.Planet{old}, []model.Planet{updated, fresh})
	require.Len(t, out, 2)
	assert.Equal(t, 2.0, out[0].Mass.Val, "reprocessed row replaces the stored one")
	assert.Equal(t, "X c", out[1].Name)
}

func TestDropIncompleteSystems(t *testing.T) {
	complete := model.NewPlanet("A", "A b")
	complete.Mass.Val, complete.SMA.Val = 1, 0.1

	partial := model.NewPlanet("B", "B b")
	partial.Mass.Val = 1 // sma missing

	sibling := model.NewPlanet("B", "B c")
	sibling.Mass.Val, sibling.SMA.Val = 2, 0.2

	out := dropIncompleteSystems([]model.Planet{complete, partial, sibling})
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].Hostname, "one incomplete row removes the whole system")
}

func TestBackOneDay(t *testing.T) {
	assert.Equal(t, "2024-02-29", backOneDay("2024-03-01"))
	assert.Equal(t, "2023-12-31", backOneDay("2024-01-01"))
	assert.Equal(t, "garbage", backOneDay("garbage"), "unparseable marks pass through")
}
