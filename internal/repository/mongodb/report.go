package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ReportStore handles document operations for moderation reports
type ReportStore struct {
	coll *mongo.Collection
}

// NewReportStore creates a new report store
func NewReportStore(db *mongo.Database) *ReportStore {
	return &ReportStore{coll: db.Collection(reportsCollection)}
}

func (s *ReportStore) guardedUpdate(ctx context.Context, what string, filter, update any) (*models.Report, error) {
	var doc reportDoc
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNoMatch
		}
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	return doc.model(), nil
}

// Create creates a new report
func (s *ReportStore) Create(ctx context.Context, report *models.Report) error {
	if _, err := s.coll.InsertOne(ctx, newReportDoc(report)); err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by ID
func (s *ReportStore) GetByID(ctx context.Context, id string) (*models.Report, error) {
	var doc reportDoc
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Wrap(apperr.KindNotFound, "report not found", err)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return doc.model(), nil
}

// MarkInvestigating moves a pending report to investigating
func (s *ReportStore) MarkInvestigating(ctx context.Context, id string) (*models.Report, error) {
	return s.guardedUpdate(ctx, "update report",
		bson.D{{Key: "_id", Value: id}, {Key: "status", Value: string(models.ReportPending)}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: string(models.ReportInvestigating)},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
}

// Resolve closes a pending or investigating report
func (s *ReportStore) Resolve(ctx context.Context, id string, status models.ReportStatus, notes, resolvedBy string, resolvedAt time.Time) (*models.Report, error) {
	return s.guardedUpdate(ctx, "resolve report",
		bson.D{
			{Key: "_id", Value: id},
			{Key: "status", Value: bson.D{{Key: "$in", Value: bson.A{
				string(models.ReportPending), string(models.ReportInvestigating),
			}}}},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: string(status)},
			{Key: "adminNotes", Value: notes},
			{Key: "resolvedBy", Value: resolvedBy},
			{Key: "resolvedAt", Value: resolvedAt},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
}

// List lists every report, newest first
func (s *ReportStore) List(ctx context.Context) ([]*models.Report, error) {
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	var docs []reportDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}
	reports := make([]*models.Report, 0, len(docs))
	for i := range docs {
		reports = append(reports, docs[i].model())
	}
	return reports, nil
}

// CountByStatus counts the reports in one status
func (s *ReportStore) CountByStatus(ctx context.Context, status models.ReportStatus) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "status", Value: string(status)}})
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return int(n), nil
}
