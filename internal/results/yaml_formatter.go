package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// TimestampFormat is used in report file names
const TimestampFormat = "2006-01-02_15-04-05"

// RunConfig represents the configuration section of a run report
type RunConfig struct {
	Job             string `yaml:"job"`
	Provider        string `yaml:"provider,omitempty"`
	Model           string `yaml:"model,omitempty"`
	MetadataPath    string `yaml:"metadatapath,omitempty"`
	MappingPath     string `yaml:"mappingpath,omitempty"`
	OutputPath      string `yaml:"outputpath"`
	MaxImages       int    `yaml:"maximages,omitempty"`
	CheckpointEvery int    `yaml:"checkpointevery,omitempty"`
	Delay           string `yaml:"delay,omitempty"`
	Width           int    `yaml:"width,omitempty"`
	Height          int    `yaml:"height,omitempty"`
	Timestamp       string `yaml:"timestamp"`
}

// RunStats counts what happened to each processed row
type RunStats struct {
	Total      int `yaml:"total"`
	Processed  int `yaml:"processed"`
	Remote     int `yaml:"remote"`
	Template   int `yaml:"template"`
	Fallback   int `yaml:"fallback"`
	Padded     int `yaml:"padded"`
	Recovered  int `yaml:"recovered"`
	Skipped    int `yaml:"skipped"`
	Duplicates int `yaml:"duplicates"`
}

// Issue is a per-row problem worth keeping in the report
type Issue struct {
	ImageID string `yaml:"image_id"`
	Message string `yaml:"message"`
}

// RunReport represents the complete report of one job
type RunReport struct {
	RunID     string        `yaml:"run_id"`
	Config    RunConfig     `yaml:"config"`
	Stats     RunStats      `yaml:"stats"`
	Issues    []Issue       `yaml:"issues,omitempty"`
	Elapsed   time.Duration `yaml:"elapsed"`
	startedAt time.Time
}

// NewRunReport starts a report for the named job
func NewRunReport(job string) *RunReport {
	now := time.Now()
	return &RunReport{
		RunID: uuid.NewString(),
		Config: RunConfig{
			Job:       job,
			Timestamp: now.Format(TimestampFormat),
		},
		startedAt: now,
	}
}

// AddIssue records a problem with one row
func (r *RunReport) AddIssue(imageID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{ImageID: imageID, Message: fmt.Sprintf(format, args...)})
}

// SaveRunReport writes the report to <dir>/<job>-<timestamp>-<run>.yaml and returns the path
func SaveRunReport(dir string, r *RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	if !r.startedAt.IsZero() {
		r.Elapsed = time.Since(r.startedAt).Round(time.Millisecond)
	}

	short := r.RunID
	if len(short) > 8 {
		short = short[:8]
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s-%s.yaml", r.Config.Job, r.Config.Timestamp, short))

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return filename, nil
	}
	return absPath, nil
}

// LoadRunReport reads a report written by SaveRunReport
func LoadRunReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var r RunReport
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}
