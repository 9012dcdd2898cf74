package models

import "time"

// FileKind tells whether a selected file is summarized or only listed.
type FileKind string

const (
	KindSource     FileKind = "source"
	KindDependency FileKind = "dependency"
)

type RepositorySource struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

type CandidateFile struct {
	Path      string   `json:"path"` // relative to the scan root, slash separated
	Extension string   `json:"extension"`
	Kind      FileKind `json:"kind"`
}

type Chunk struct {
	Index     int    `json:"index"`
	Content   string `json:"content"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
}

type Summary struct {
	Path         string `json:"path"`
	Language     string `json:"language"`
	Text         string `json:"text"`
	Chunks       int    `json:"chunks"`
	FailedChunks int    `json:"failed_chunks"`
}

type DocumentReport struct {
	RepositoryURL   string          `json:"repository_url"`
	ScanPath        string          `json:"scan_path"`
	Model           string          `json:"model"`
	GeneratedAt     time.Time       `json:"generated_at"`
	DependencyFiles []CandidateFile `json:"dependency_files"`
	Files           []Summary       `json:"files"`
}
