package catalog

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/starfield-labs/exonamd/internal/model"
)

// colSpec binds one CSV column to a planet field.
type colSpec struct {
	name string
	get  func(*model.Planet) string
	set  func(*model.Planet, string) error
}

func quantityCols(name string, q func(*model.Planet) *model.Quantity) []colSpec {
	return []colSpec{
		{name, func(p *model.Planet) string { return formatFloat(q(p).Val) },
			func(p *model.Planet, s string) error { return parseFloat(s, &q(p).Val) }},
		{name + "err1", func(p *model.Planet) string { return formatFloat(q(p).Err1) },
			func(p *model.Planet, s string) error { return parseFloat(s, &q(p).Err1) }},
		{name + "err2", func(p *model.Planet) string { return formatFloat(q(p).Err2) },
			func(p *model.Planet, s string) error { return parseFloat(s, &q(p).Err2) }},
	}
}

func floatCol(name string, f func(*model.Planet) *float64) colSpec {
	return colSpec{name, func(p *model.Planet) string { return formatFloat(*f(p)) },
		func(p *model.Planet, s string) error { return parseFloat(s, f(p)) }}
}

func intCol(name string, f func(*model.Planet) *int) colSpec {
	return colSpec{name,
		func(p *model.Planet) string { return strconv.Itoa(*f(p)) },
		func(p *model.Planet, s string) error {
			if s == "" {
				*f(p) = 0
				return nil
			}
			v, err := strconv.Atoi(s)
			if err != nil {
				return eris.Wrapf(err, "csv: column %s", name)
			}
			*f(p) = v
			return nil
		}}
}

func quantileCols(prefix string, q func(*model.Planet) *model.Quantiles) []colSpec {
	return []colSpec{
		{prefix + "_q16", func(p *model.Planet) string { return formatFloat(q(p).Q16) },
			func(p *model.Planet, s string) error { return parseFloat(s, &q(p).Q16) }},
		{prefix + "_q50", func(p *model.Planet) string { return formatFloat(q(p).Q50) },
			func(p *model.Planet, s string) error { return parseFloat(s, &q(p).Q50) }},
		{prefix + "_q84", func(p *model.Planet) string { return formatFloat(q(p).Q84) },
			func(p *model.Planet, s string) error { return parseFloat(s, &q(p).Q84) }},
		intCol(prefix+"_n", func(p *model.Planet) *int { return &q(p).N }),
	}
}

// columns is the snapshot schema in output order.
func columns() []colSpec {
	cols := []colSpec{
		{"hostname", func(p *model.Planet) string { return p.Hostname },
			func(p *model.Planet, s string) error { p.Hostname = s; return nil }},
		{"pl_name", func(p *model.Planet) string { return p.Name },
			func(p *model.Planet, s string) error { p.Name = s; return nil }},
		intCol("default_flag", func(p *model.Planet) *int { return &p.DefaultFlag }),
		{"rowupdate", func(p *model.Planet) string { return p.RowUpdate },
			func(p *model.Planet, s string) error { p.RowUpdate = s; return nil }},
		intCol("sy_pnum", func(p *model.Planet) *int { return &p.SyPNum }),
	}
	cols = append(cols, quantityCols("st_rad", func(p *model.Planet) *model.Quantity { return &p.StRad })...)
	cols = append(cols, quantityCols("st_mass", func(p *model.Planet) *model.Quantity { return &p.StMass })...)
	cols = append(cols, quantityCols("pl_orbper", func(p *model.Planet) *model.Quantity { return &p.Period })...)
	cols = append(cols, quantityCols("pl_orbsmax", func(p *model.Planet) *model.Quantity { return &p.SMA })...)
	cols = append(cols, quantityCols("pl_rade", func(p *model.Planet) *model.Quantity { return &p.Radius })...)
	cols = append(cols, quantityCols("pl_bmasse", func(p *model.Planet) *model.Quantity { return &p.Mass })...)
	cols = append(cols, quantityCols("pl_orbeccen", func(p *model.Planet) *model.Quantity { return &p.Ecc })...)
	cols = append(cols, quantityCols("pl_orbincl", func(p *model.Planet) *model.Quantity { return &p.Incl })...)
	cols = append(cols, quantityCols("pl_relincl", func(p *model.Planet) *model.Quantity { return &p.RelIncl })...)
	cols = append(cols, quantityCols("pl_trueobliq", func(p *model.Planet) *model.Quantity { return &p.TrueObliq })...)
	cols = append(cols,
		floatCol("pl_ratdor", func(p *model.Planet) *float64 { return &p.SMARatio }),
		floatCol("pl_ratror", func(p *model.Planet) *float64 { return &p.RadiusRatio }),
		colSpec{"flag", func(p *model.Planet) string { return p.Flag.String() },
			func(p *model.Planet, s string) error {
				f, err := model.ParseFlag(s)
				if err != nil {
					return err
				}
				p.Flag = f
				return nil
			}},
		floatCol("namd_rel", func(p *model.Planet) *float64 { return &p.NAMDRel }),
		floatCol("namd_abs", func(p *model.Planet) *float64 { return &p.NAMDAbs }),
	)
	cols = append(cols, quantileCols("namd_rel", func(p *model.Planet) *model.Quantiles { return &p.NAMDRelMC })...)
	cols = append(cols, quantileCols("namd_abs", func(p *model.Planet) *model.Quantiles { return &p.NAMDAbsMC })...)
	return cols
}

// WriteCSV writes the table in snapshot form. Missing values serialize as
// empty cells.
func WriteCSV(w io.Writer, planets []model.Planet) error {
	cols := columns()
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "csv: write header")
	}

	record := make([]string, len(cols))
	for i := range planets {
		for j, c := range cols {
			record[j] = c.get(&planets[i])
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrapf(err, "csv: write row %d", i)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}

// ReadCSV reads a snapshot written by WriteCSV or fetched from the archive.
// Unknown columns are ignored so archive responses with extra fields load
// cleanly.
func ReadCSV(r io.Reader) ([]model.Planet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	byName := make(map[string]colSpec)
	for _, c := range columns() {
		byName[c.name] = c
	}
	setters := make([]func(*model.Planet, string) error, len(header))
	for i, name := range header {
		if c, ok := byName[name]; ok {
			setters[i] = c.set
		}
	}

	var planets []model.Planet
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read line %d", line)
		}
		p := model.NewPlanet("", "")
		for i, val := range record {
			if i >= len(setters) || setters[i] == nil {
				continue
			}
			if err := setters[i](&p, val); err != nil {
				return nil, eris.Wrapf(err, "csv: line %d", line)
			}
		}
		planets = append(planets, p)
	}
	return planets, nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string, dst *float64) error {
	if s == "" {
		*dst = math.NaN()
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return eris.Wrapf(err, "csv: parse %q", s)
	}
	*dst = v
	return nil
}
