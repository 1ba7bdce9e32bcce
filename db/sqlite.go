package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration

	"gait-analysis/models"
	"gait-analysis/utils"
)

type SQLiteClient struct {
	db *sql.DB
}

func NewSQLiteClient(dataSourceName string) (*SQLiteClient, error) {
	// Extract the file path before query parameters
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}

	// Create the directory if it doesn't exist (cross-platform)
	dbDir := filepath.Dir(dbPath)
	if dbDir != "." && dbDir != "" {
		if err := utils.CreateFolder(dbDir); err != nil {
			return nil, fmt.Errorf("error creating database directory: %s", err)
		}
	}

	// Add busy timeout param to DSN (milliseconds)
	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000" // 5 seconds
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %s", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("error creating tables: %s", err)
	}

	return &SQLiteClient{db: db}, nil
}

// createTables creates the required tables if they don't exist
func createTables(db *sql.DB) error {
	createAnalysesTable := `
    CREATE TABLE IF NOT EXISTS analyses (
        id TEXT PRIMARY KEY,
        timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        dataset_id TEXT NOT NULL,
        sequence_id TEXT NOT NULL,
        subject TEXT,
        overall_level TEXT NOT NULL,
        confidence TEXT NOT NULL,
        symmetry_score REAL,
        cadence_spm REAL,
        stability_index REAL,
        cycle_count INTEGER NOT NULL DEFAULT 0,
        latency_ms REAL NOT NULL DEFAULT 0,
        result TEXT NOT NULL,
        sequence_path TEXT
    );
    CREATE INDEX IF NOT EXISTS idx_analyses_timestamp ON analyses(timestamp);
    CREATE INDEX IF NOT EXISTS idx_analyses_dataset ON analyses(dataset_id, sequence_id);
    `

	_, err := db.Exec(createAnalysesTable)
	if err != nil {
		return fmt.Errorf("error creating analyses table: %s", err)
	}

	return nil
}

func (db *SQLiteClient) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// StoreAnalysis stores a completed analysis in the database
func (db *SQLiteClient) StoreAnalysis(record *models.AnalysisRecord) error {
	_, err := db.db.Exec(`
		INSERT INTO analyses (
			id, timestamp, dataset_id, sequence_id, subject, overall_level,
			confidence, symmetry_score, cadence_spm, stability_index,
			cycle_count, latency_ms, result, sequence_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp,
		record.DatasetID,
		record.SequenceID,
		record.Subject,
		record.OverallLevel,
		record.Confidence,
		record.SymmetryScore,
		record.CadenceSPM,
		record.StabilityIndex,
		record.CycleCount,
		record.LatencyMs,
		string(record.Result),
		record.SequencePath,
	)
	if err != nil {
		return fmt.Errorf("error storing analysis: %s", err)
	}
	return nil
}

// RecentAnalyses retrieves up to limit analyses, newest first
func (db *SQLiteClient) RecentAnalyses(limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.db.Query(analysisSelect+`
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying analyses: %s", err)
	}
	defer rows.Close()

	return scanAnalyses(rows)
}

// AnalysesByDataset retrieves analyses for one dataset, newest first
func (db *SQLiteClient) AnalysesByDataset(datasetID string, limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.db.Query(analysisSelect+`
		WHERE dataset_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, datasetID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying analyses by dataset: %s", err)
	}
	defer rows.Close()

	return scanAnalyses(rows)
}

func (db *SQLiteClient) TotalAnalyses() (int, error) {
	var count int
	err := db.db.QueryRow("SELECT COUNT(*) FROM analyses").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting analyses: %s", err)
	}
	return count, nil
}

const analysisSelect = `
	SELECT id, timestamp, dataset_id, sequence_id, subject, overall_level,
	       confidence, symmetry_score, cadence_spm, stability_index,
	       cycle_count, latency_ms, result, sequence_path
	FROM analyses
`

func scanAnalyses(rows *sql.Rows) ([]models.AnalysisRecord, error) {
	var records []models.AnalysisRecord
	for rows.Next() {
		var r models.AnalysisRecord
		var subject, sequencePath sql.NullString
		var resultJSON string

		err := rows.Scan(
			&r.ID,
			&r.Timestamp,
			&r.DatasetID,
			&r.SequenceID,
			&subject,
			&r.OverallLevel,
			&r.Confidence,
			&r.SymmetryScore,
			&r.CadenceSPM,
			&r.StabilityIndex,
			&r.CycleCount,
			&r.LatencyMs,
			&resultJSON,
			&sequencePath,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning analysis: %s", err)
		}

		r.Subject = subject.String
		r.SequencePath = sequencePath.String
		r.Result = []byte(resultJSON)
		records = append(records, r)
	}

	return records, nil
}
