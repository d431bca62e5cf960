package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/sway.report/internal/fsutil"
	"github.com/banshee-data/sway.report/internal/sway"
)

// TrialResult is everything produced for one acquisition file.
type TrialResult struct {
	Path string
	Info TrialInfo
	// Raw is the COP at the device rate, before conditioning.
	Raw sway.COPSeries
	// COP is the conditioned series the features were computed on.
	COP               sway.COPSeries
	TimeFeatures      sway.FeatureSet
	FrequencyFeatures sway.FeatureSet
	Spectra           map[sway.Direction]sway.SpectralDensity
}

// Document is the persisted JSON form of a trial's features.
type Document struct {
	TimeFeatures      sway.FeatureSet `json:"time_features"`
	FrequencyFeatures sway.FeatureSet `json:"frequency_features"`
	Device            string          `json:"device"`
	Subject           string          `json:"subject"`
	Trial             string          `json:"trial"`
	BalanceBoard      string          `json:"balance board"`
}

// Document returns the feature document for r.
func (r *TrialResult) Document() Document {
	return Document{
		TimeFeatures:      r.TimeFeatures,
		FrequencyFeatures: r.FrequencyFeatures,
		Device:            r.Info.Device,
		Subject:           r.Info.Subject,
		Trial:             r.Info.Trial,
		BalanceBoard:      r.Info.BalanceBoard,
	}
}

// Info returns the trial identity carried by the document.
func (d Document) Info() TrialInfo {
	return TrialInfo{Device: d.Device, Subject: d.Subject, Trial: d.Trial, BalanceBoard: d.BalanceBoard}
}

// LoadDocument reads a feature document written by JSONSink.
func LoadDocument(fsys fsutil.FileSystem, path string) (Document, error) {
	var doc Document
	data, err := fsys.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read feature document: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse feature document %s: %w", path, err)
	}
	return doc, nil
}
