package agreement

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

var csvHeader = []string{
	"feature", "domain", "n",
	"wbb_mean", "wbb_std", "fp_mean", "fp_std",
	"t", "t_p", "spearman_rho", "spearman_p",
	"ba_bias", "ba_lower", "ba_upper", "icc",
}

// WriteCSV writes one row per feature. NaN is written as an empty cell.
func WriteCSV(w io.Writer, results []FeatureAgreement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Feature, string(r.Domain), strconv.Itoa(r.N),
			num(r.Board.Mean), num(r.Board.Std), num(r.Plate.Mean), num(r.Plate.Std),
			num(r.TTest.Statistic), num(r.TTest.P), num(r.Spearman.Statistic), num(r.Spearman.P),
			num(r.BlandAltman.Bias), num(r.BlandAltman.Lower), num(r.BlandAltman.Upper), num(r.ICC),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", r.Feature, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBoardCSV writes the per-balance-board descriptive statistics.
func WriteBoardCSV(w io.Writer, results []FeatureAgreement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"feature", "domain", "balance_board", "n", "wbb_mean", "wbb_std", "fp_mean", "fp_std"}); err != nil {
		return err
	}
	for _, r := range results {
		ids := make([]string, 0, len(r.PerBoard))
		for id := range r.PerBoard {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			s := r.PerBoard[id]
			row := []string{
				r.Feature, string(r.Domain), id, strconv.Itoa(s[0].N),
				num(s[0].Mean), num(s[0].Std), num(s[1].Mean), num(s[1].Std),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	if !isFinite(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}
