package model

import (
	"encoding/json"
	"math"
)

// nullable maps NaN and infinities to JSON null; encoding/json rejects them
// otherwise.
func nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Val  *float64 `json:"val"`
		Err1 *float64 `json:"err1"`
		Err2 *float64 `json:"err2"`
	}{nullable(q.Val), nullable(q.Err1), nullable(q.Err2)})
}

func (q Quantiles) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Q16 *float64 `json:"q16"`
		Q50 *float64 `json:"q50"`
		Q84 *float64 `json:"q84"`
		N   int      `json:"n"`
	}{nullable(q.Q16), nullable(q.Q50), nullable(q.Q84), q.N})
}

func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (p Planet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Hostname    string    `json:"hostname"`
		Name        string    `json:"pl_name"`
		DefaultFlag int       `json:"default_flag"`
		RowUpdate   string    `json:"rowupdate"`
		SyPNum      int       `json:"sy_pnum"`
		StRad       Quantity  `json:"st_rad"`
		StMass      Quantity  `json:"st_mass"`
		Period      Quantity  `json:"pl_orbper"`
		SMA         Quantity  `json:"pl_orbsmax"`
		Radius      Quantity  `json:"pl_rade"`
		Mass        Quantity  `json:"pl_bmasse"`
		Ecc         Quantity  `json:"pl_orbeccen"`
		Incl        Quantity  `json:"pl_orbincl"`
		RelIncl     Quantity  `json:"pl_relincl"`
		TrueObliq   Quantity  `json:"pl_trueobliq"`
		SMARatio    *float64  `json:"pl_ratdor"`
		RadiusRatio *float64  `json:"pl_ratror"`
		Flag        Flag      `json:"flag"`
		NAMDRel     *float64  `json:"namd_rel"`
		NAMDAbs     *float64  `json:"namd_abs"`
		NAMDRelMC   Quantiles `json:"namd_rel_mc"`
		NAMDAbsMC   Quantiles `json:"namd_abs_mc"`
	}{
		Hostname:    p.Hostname,
		Name:        p.Name,
		DefaultFlag: p.DefaultFlag,
		RowUpdate:   p.RowUpdate,
		SyPNum:      p.SyPNum,
		StRad:       p.StRad,
		StMass:      p.StMass,
		Period:      p.Period,
		SMA:         p.SMA,
		Radius:      p.Radius,
		Mass:        p.Mass,
		Ecc:         p.Ecc,
		Incl:        p.Incl,
		RelIncl:     p.RelIncl,
		TrueObliq:   p.TrueObliq,
		SMARatio:    nullable(p.SMARatio),
		RadiusRatio: nullable(p.RadiusRatio),
		Flag:        p.Flag,
		NAMDRel:     nullable(p.NAMDRel),
		NAMDAbs:     nullable(p.NAMDAbs),
		NAMDRelMC:   p.NAMDRelMC,
		NAMDAbsMC:   p.NAMDAbsMC,
	})
}
