// Package dataprocess manages saving and loading of generated observation
// sequences and solved estimates.
package dataprocess

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"

	"github.com/mapbuild/graphslam"
)

// TimeFormat is the timestamp format used in output filenames.
const TimeFormat = "2006-01-02T15:04:05.0000Z"

// CreateTimestampFilename creates an absolute filename with the run prefix
// and timestamp written into the filename.
func CreateTimestampFilename(dataDirectory, prefix, fileType string, timeStamp time.Time) string {
	return filepath.Join(dataDirectory, prefix+"_"+timeStamp.UTC().Format(TimeFormat)+fileType)
}

// WriteStepsToFile encodes the observation sequence and saves it to the
// passed filename.
func WriteStepsToFile(steps []graphslam.TimeStep, filename string) error {
	data, err := json.MarshalIndent(steps, "", "  ")
	if err != nil {
		return err
	}
	return writeBytesToFile(data, filename)
}

// ReadStepsFromFile loads an observation sequence previously written with
// WriteStepsToFile.
func ReadStepsFromFile(filename string) ([]graphslam.TimeStep, error) {
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil, err
	}
	var steps []graphslam.TimeStep
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// WriteEstimateToFile encodes the solved estimate and saves it to the passed
// filename.
func WriteEstimateToFile(estimate graphslam.Estimate, filename string) error {
	data, err := json.MarshalIndent(estimate, "", "  ")
	if err != nil {
		return err
	}
	return writeBytesToFile(data, filename)
}

// ReadEstimateFromFile loads an estimate previously written with
// WriteEstimateToFile.
func ReadEstimateFromFile(filename string) (graphslam.Estimate, error) {
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return graphslam.Estimate{}, err
	}
	var estimate graphslam.Estimate
	if err := json.Unmarshal(data, &estimate); err != nil {
		return graphslam.Estimate{}, err
	}
	return estimate, nil
}

func writeBytesToFile(data []byte, filename string) error {
	//nolint:gosec
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		return multierr.Combine(err, f.Close())
	}
	if err := w.Flush(); err != nil {
		return multierr.Combine(err, f.Close())
	}
	return f.Close()
}
