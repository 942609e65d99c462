// internal/store/applications.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cozypet/loan-processor-ai/internal/common/config"
	"github.com/cozypet/loan-processor-ai/internal/common/database"
	stderrors "github.com/cozypet/loan-processor-ai/internal/common/errors"
	"github.com/cozypet/loan-processor-ai/internal/common/logger"
	"github.com/cozypet/loan-processor-ai/internal/profile"
	"github.com/cozypet/loan-processor-ai/internal/risk"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Application is the persisted record for one completed pipeline run. The
// creation timestamp is stamped at the moment of persistence.
type Application struct {
	ID             primitive.ObjectID       `bson:"_id,omitempty" json:"id,omitempty"`
	ApplicantData  profile.ApplicantProfile `bson:"applicant_data" json:"applicant_data"`
	RiskAssessment *risk.RiskAssessment     `bson:"risk_assessment" json:"risk_assessment"`
	LoanAmount     float64                  `bson:"loan_amount" json:"loan_amount"`
	CreatedAt      time.Time                `bson:"created_at" json:"created_at"`
}

// collection is the slice of mongo.Collection the store uses, split out so
// tests can substitute it.
type collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

// ApplicationStore persists application records to MongoDB.
type ApplicationStore struct {
	coll    collection
	timeout time.Duration
	logger  logger.Logger
	now     func() time.Time
}

func NewApplicationStore(client *database.MongoClient, cfg config.MongoConfig, log logger.Logger) *ApplicationStore {
	return newStore(client.Database.Collection(cfg.Collection), time.Duration(cfg.TimeoutSec)*time.Second, log)
}

// NewWithCollection wires an explicit collection, used by tests.
func NewWithCollection(coll collection, timeout time.Duration, log logger.Logger) *ApplicationStore {
	return newStore(coll, timeout, log)
}

func newStore(coll collection, timeout time.Duration, log logger.Logger) *ApplicationStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ApplicationStore{
		coll:    coll,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "application-store"}),
		now:     time.Now,
	}
}

// Save inserts one application record, stamping created_at, and returns the
// generated identifier.
func (s *ApplicationStore) Save(ctx context.Context, app Application) (string, error) {
	app.ID = primitive.NilObjectID
	app.CreatedAt = s.now().UTC()

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.coll.InsertOne(opCtx, app)
	if err != nil {
		s.logger.Error("application insert failed", map[string]interface{}{"error": err.Error()})
		return "", stderrors.NewPersistenceError(err)
	}

	id := ""
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		id = oid.Hex()
	} else {
		id = fmt.Sprint(res.InsertedID)
	}

	s.logger.Info("application record saved", map[string]interface{}{
		"applicationId": id,
		"loanAmount":    app.LoanAmount,
	})
	return id, nil
}

// FindByID loads one application record for report export.
func (s *ApplicationStore) FindByID(ctx context.Context, id string) (*Application, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, stderrors.NewPersistenceError(fmt.Errorf("invalid application id %q: %w", id, err))
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var app Application
	if err := s.coll.FindOne(opCtx, bson.M{"_id": oid}).Decode(&app); err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}
	return &app, nil
}
