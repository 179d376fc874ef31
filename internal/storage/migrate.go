// ABOUTME: Data migration between trackwise storage backends.
// ABOUTME: Copies goals, progress, conversations and messages from source to destination.

package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Goals         int
	Progress      int
	Conversations int
	Messages      int
}

// CountData counts the records MigrateData would copy, without writing anything.
func CountData(src Repository) (*MigrateSummary, error) {
	data, err := src.GetAllData()
	if err != nil {
		return nil, err
	}
	return summarize(data), nil
}

// MigrateData copies all data from src to dst storage, preserving IDs.
// The destination should be empty before calling this function.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	data, err := src.GetAllData()
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	if err := dst.ImportData(data); err != nil {
		return nil, fmt.Errorf("write destination: %w", err)
	}

	return summarize(data), nil
}

func summarize(data *ExportData) *MigrateSummary {
	summary := &MigrateSummary{
		Goals:         len(data.Goals),
		Conversations: len(data.Conversations),
	}
	for _, g := range data.Goals {
		summary.Progress += len(g.Progress)
	}
	for _, c := range data.Conversations {
		summary.Messages += len(c.Messages)
	}
	return summary
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
