package db

import (
	"fmt"
	"path/filepath"

	"gait-analysis/models"
	"gait-analysis/utils"
)

// DBClient is the persistence interface for completed analyses. Both
// backends store the full result document plus the queryable summary columns.
type DBClient interface {
	StoreAnalysis(record *models.AnalysisRecord) error
	RecentAnalyses(limit int) ([]models.AnalysisRecord, error)
	AnalysesByDataset(datasetID string, limit int) ([]models.AnalysisRecord, error)
	TotalAnalyses() (int, error)
	Close() error
}

// NewDBClient selects the backend from DB_TYPE (sqlite by default).
func NewDBClient() (DBClient, error) {
	dbType := utils.GetEnv("DB_TYPE", "sqlite")

	switch dbType {
	case "sqlite", "sqlite3":
		path := utils.GetEnv("SQLITE_DB_PATH", filepath.Join("storage", "gait.db"))
		return NewSQLiteClient(path)
	case "mongo", "mongodb":
		uri := utils.GetEnv("DB_URI", "mongodb://localhost:27017")
		name := utils.GetEnv("DB_NAME", "gait_analysis")
		return NewMongoClient(uri, name)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}
