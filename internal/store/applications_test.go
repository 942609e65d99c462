// internal/store/applications_test.go
package store

import (
	"context"
	"errors"
	"testing"
	"time"

	stderrors "github.com/cozypet/loan-processor-ai/internal/common/errors"
	"github.com/cozypet/loan-processor-ai/internal/common/logger"
	"github.com/cozypet/loan-processor-ai/internal/profile"
	"github.com/cozypet/loan-processor-ai/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeCollection captures inserts and serves canned FindOne results.
type fakeCollection struct {
	inserted   []interface{}
	insertErr  error
	insertedID primitive.ObjectID
	findResult *mongo.SingleResult
}

func (f *fakeCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, document)
	return &mongo.InsertOneResult{InsertedID: f.insertedID}, nil
}

func (f *fakeCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	return f.findResult
}

func testApplication() Application {
	avg := 1800.0
	return Application{
		ApplicantData: profile.ApplicantProfile{
			FullName:           "Marie Dupont",
			MonthlyGrossIncome: 3000,
			AverageBalance:     &avg,
		},
		RiskAssessment: &risk.RiskAssessment{
			RiskScore:      35,
			RiskLevel:      risk.RiskLevelLow,
			Recommendation: risk.RecommendationApprove,
		},
		LoanAmount: 15000,
	}
}

func TestSaveStampsCreatedAt(t *testing.T) {
	oid := primitive.NewObjectID()
	coll := &fakeCollection{insertedID: oid}
	s := NewWithCollection(coll, time.Second, logger.NewNoOpLogger())

	fixed := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	id, err := s.Save(context.Background(), testApplication())

	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), id)

	require.Len(t, coll.inserted, 1)
	saved := coll.inserted[0].(Application)
	assert.Equal(t, fixed, saved.CreatedAt)
	assert.Equal(t, primitive.NilObjectID, saved.ID, "the driver generates the id, not the caller")
	assert.Equal(t, "Marie Dupont", saved.ApplicantData.FullName)
}

func TestSaveInsertFailure(t *testing.T) {
	coll := &fakeCollection{insertErr: errors.New("write concern timeout")}
	s := NewWithCollection(coll, time.Second, logger.NewNoOpLogger())

	id, err := s.Save(context.Background(), testApplication())

	assert.Empty(t, id)
	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, stderrors.ErrCodePersistenceError, stdErr.Code)
}

func TestFindByID(t *testing.T) {
	oid := primitive.NewObjectID()
	app := testApplication()
	app.ID = oid
	app.CreatedAt = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	res := mongo.NewSingleResultFromDocument(app, nil, bson.DefaultRegistry)
	coll := &fakeCollection{findResult: res}
	s := NewWithCollection(coll, time.Second, logger.NewNoOpLogger())

	got, err := s.FindByID(context.Background(), oid.Hex())

	require.NoError(t, err)
	assert.Equal(t, oid, got.ID)
	assert.Equal(t, "Marie Dupont", got.ApplicantData.FullName)
	require.NotNil(t, got.ApplicantData.AverageBalance)
	assert.InDelta(t, 1800.0, *got.ApplicantData.AverageBalance, 1e-9)
	assert.Equal(t, risk.RecommendationApprove, got.RiskAssessment.Recommendation)
}

func TestFindByIDInvalidID(t *testing.T) {
	s := NewWithCollection(&fakeCollection{}, time.Second, logger.NewNoOpLogger())

	got, err := s.FindByID(context.Background(), "not-an-object-id")

	assert.Nil(t, got)
	var stdErr *stderrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, stderrors.ErrCodePersistenceError, stdErr.Code)
}

func TestFindByIDNotFound(t *testing.T) {
	res := mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, bson.DefaultRegistry)
	coll := &fakeCollection{findResult: res}
	s := NewWithCollection(coll, time.Second, logger.NewNoOpLogger())

	got, err := s.FindByID(context.Background(), primitive.NewObjectID().Hex())

	assert.Nil(t, got)
	require.Error(t, err)
}
