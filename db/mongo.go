package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gait-analysis/models"
)

type MongoClient struct {
	client *mongo.Client
	dbName string
}

// mongoAnalysis mirrors models.AnalysisRecord with bson tags; the full
// result document is stored as an extended-JSON string so it round-trips
// byte for byte.
type mongoAnalysis struct {
	ID             string    `bson:"_id"`
	Timestamp      time.Time `bson:"timestamp"`
	DatasetID      string    `bson:"datasetId"`
	SequenceID     string    `bson:"sequenceId"`
	Subject        string    `bson:"subject,omitempty"`
	OverallLevel   string    `bson:"overallLevel"`
	Confidence     string    `bson:"confidence"`
	SymmetryScore  *float64  `bson:"symmetryScore,omitempty"`
	CadenceSPM     *float64  `bson:"cadenceSpm,omitempty"`
	StabilityIndex *float64  `bson:"stabilityIndex,omitempty"`
	CycleCount     int       `bson:"cycleCount"`
	LatencyMs      float64   `bson:"latencyMs"`
	Result         string    `bson:"result"`
	SequencePath   string    `bson:"sequencePath,omitempty"`
}

func NewMongoClient(uri, dbName string) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %s", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("error pinging MongoDB: %s", err)
	}

	return &MongoClient{client: client, dbName: dbName}, nil
}

func (m *MongoClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoClient) analyses() *mongo.Collection {
	return m.client.Database(m.dbName).Collection("analyses")
}

// StoreAnalysis stores a completed analysis
func (m *MongoClient) StoreAnalysis(record *models.AnalysisRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doc := mongoAnalysis{
		ID:             record.ID,
		Timestamp:      record.Timestamp,
		DatasetID:      record.DatasetID,
		SequenceID:     record.SequenceID,
		Subject:        record.Subject,
		OverallLevel:   record.OverallLevel,
		Confidence:     record.Confidence,
		SymmetryScore:  record.SymmetryScore,
		CadenceSPM:     record.CadenceSPM,
		StabilityIndex: record.StabilityIndex,
		CycleCount:     record.CycleCount,
		LatencyMs:      record.LatencyMs,
		Result:         string(record.Result),
		SequencePath:   record.SequencePath,
	}

	if _, err := m.analyses().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("error storing analysis: %s", err)
	}
	return nil
}

// RecentAnalyses retrieves up to limit analyses, newest first
func (m *MongoClient) RecentAnalyses(limit int) ([]models.AnalysisRecord, error) {
	return m.findAnalyses(bson.M{}, limit)
}

// AnalysesByDataset retrieves analyses for one dataset, newest first
func (m *MongoClient) AnalysesByDataset(datasetID string, limit int) ([]models.AnalysisRecord, error) {
	return m.findAnalyses(bson.M{"datasetId": datasetID}, limit)
}

func (m *MongoClient) findAnalyses(filter bson.M, limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := m.analyses().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying analyses: %s", err)
	}
	defer cursor.Close(ctx)

	var records []models.AnalysisRecord
	for cursor.Next(ctx) {
		var doc mongoAnalysis
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding analysis: %s", err)
		}
		records = append(records, models.AnalysisRecord{
			ID:             doc.ID,
			Timestamp:      doc.Timestamp,
			DatasetID:      doc.DatasetID,
			SequenceID:     doc.SequenceID,
			Subject:        doc.Subject,
			OverallLevel:   doc.OverallLevel,
			Confidence:     doc.Confidence,
			SymmetryScore:  doc.SymmetryScore,
			CadenceSPM:     doc.CadenceSPM,
			StabilityIndex: doc.StabilityIndex,
			CycleCount:     doc.CycleCount,
			LatencyMs:      doc.LatencyMs,
			Result:         []byte(doc.Result),
			SequencePath:   doc.SequencePath,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %s", err)
	}

	return records, nil
}

func (m *MongoClient) TotalAnalyses() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.analyses().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting analyses: %s", err)
	}
	return int(count), nil
}
