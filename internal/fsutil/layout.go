package fsutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Swap maps a path fragment of a board recording to the fragment used by
// the matching force plate recording.
type Swap struct {
	Board string
	Plate string
}

// Layout describes how trial files are named on disk. A force plate
// recording's path is its board counterpart with every Swap applied. The
// first Swap classifies files by device.
type Layout struct {
	Swaps []Swap
	// Ext is the acquisition export extension, ".json" by default.
	Ext string
	// Skip lists substrings that mark derived or system files.
	Skip []string
}

// DefaultLayout matches BalanceBoard/Repro<subject>/BB/<board>_<trial>
// recordings with Vicon/Repro<subject>/FP/<board>_<trial>.
func DefaultLayout() Layout {
	return Layout{
		Swaps: []Swap{
			{Board: "BalanceBoard", Plate: "Vicon"},
			{Board: "/BB/", Plate: "/FP/"},
		},
		Ext:  ".json",
		Skip: []string{".DS_Store", "_cop", "_features"},
	}
}

// Pair is one trial recorded by both devices.
type Pair struct {
	Board string
	Plate string
}

// Discover lists the acquisition exports below root.
func Discover(fsys FileSystem, root string, layout Layout) ([]string, error) {
	files, err := fsys.ListFiles(root)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	ext := layout.Ext
	if ext == "" {
		ext = ".json"
	}
	var out []string
outer:
	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f), ext) {
			continue
		}
		for _, s := range layout.Skip {
			if strings.Contains(f, s) {
				continue outer
			}
		}
		out = append(out, f)
	}
	return out, nil
}

// PairFiles keeps only trials present for both devices. Files that the
// first Swap does not classify are ignored. Pairs come back in board-file
// order.
func PairFiles(files []string, layout Layout) []Pair {
	if len(layout.Swaps) == 0 {
		return nil
	}
	first := layout.Swaps[0]
	plates := make(map[string]string)
	var boards []string
	for _, f := range files {
		slash := filepath.ToSlash(f)
		switch {
		case strings.Contains(slash, first.Plate):
			plates[slash] = f
		case strings.Contains(slash, first.Board):
			boards = append(boards, f)
		}
	}
	var pairs []Pair
	for _, b := range boards {
		p := filepath.ToSlash(b)
		for _, s := range layout.Swaps {
			p = strings.Replace(p, s.Board, s.Plate, 1)
		}
		if plate, ok := plates[p]; ok {
			pairs = append(pairs, Pair{Board: b, Plate: plate})
		}
	}
	return pairs
}

// BuildOutputPath maps an input file under inputRoot to
// outputRoot/<relative path without extension>_<suffix>.json. Inputs
// outside inputRoot keep only their base name.
func BuildOutputPath(input, inputRoot, outputRoot, suffix string) string {
	return BuildOutputPathExt(input, inputRoot, outputRoot, suffix, ".json")
}

// BuildOutputPathExt is BuildOutputPath with a caller-chosen extension.
func BuildOutputPathExt(input, inputRoot, outputRoot, suffix, ext string) string {
	rel, err := filepath.Rel(inputRoot, input)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(input)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(outputRoot, rel+"_"+suffix+ext)
}
