package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gait-analysis/models"
	"gait-analysis/utils"
)

// Store keeps an append-only JSON file of analysis records. It is the
// lightweight local history that works without any database configured.
type Store struct {
	path string
	mu   sync.RWMutex
}

// NewStore creates a store backed by the given file path. The file is
// created lazily on first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// loadInternal reads all records from the file (caller holds the lock).
func (s *Store) loadInternal() ([]models.AnalysisRecord, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return []models.AnalysisRecord{}, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("error reading history file: %v", err)
	}
	if len(data) == 0 {
		return []models.AnalysisRecord{}, nil
	}

	var records []models.AnalysisRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error unmarshaling history: %v", err)
	}
	return records, nil
}

// Append adds a record to the history. A missing ID or timestamp is filled
// in, matching what the database layer does.
func (s *Store) Append(record *models.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadInternal()
	if err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = utils.NewULIDFromTimestamp(time.Now())
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	records = append(records, *record)

	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := utils.CreateFolder(dir); err != nil {
			return fmt.Errorf("error creating history directory: %v", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling history: %v", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("error writing history file: %v", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A non-positive limit
// returns everything.
func (s *Store) Recent(limit int) ([]models.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.loadInternal()
	if err != nil {
		return nil, err
	}

	// Appends are chronological, so newest-first is a reversal.
	out := make([]models.AnalysisRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.loadInternal()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
