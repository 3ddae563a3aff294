package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studyhub/internal/model"
)

// SessionRepo handles MongoDB operations for sessions
type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) (string, error)
	GetByID(ctx context.Context, id string) (*model.Session, error)
	// ListByTutor and ListByParticipant return sessions newest first.
	ListByTutor(ctx context.Context, tutorID string) ([]*model.Session, error)
	ListByParticipant(ctx context.Context, userID string) ([]*model.Session, error)
	SetMeeting(ctx context.Context, id string, meeting *model.Meeting) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

// EnsureSessionIndexes creates the indexes used by the list queries.
func EnsureSessionIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("sessions").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tutorId", Value: 1}, {Key: "startTime", Value: -1}}},
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "startTime", Value: -1}}},
	})
	return classify(err)
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) (string, error) {
	session.ID = ""
	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return "", classify(err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id %v", result.InsertedID)
	}
	session.ID = oid.Hex()
	return session.ID, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// not one of ours
		return nil, nil
	}

	var session model.Session
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	session.ID = id
	utc(&session)
	return &session, nil
}

func (r *sessionRepo) ListByTutor(ctx context.Context, tutorID string) ([]*model.Session, error) {
	return r.find(ctx, bson.M{"tutorId": tutorID})
}

func (r *sessionRepo) ListByParticipant(ctx context.Context, userID string) ([]*model.Session, error) {
	return r.find(ctx, bson.M{"participants": userID})
}

func (r *sessionRepo) find(ctx context.Context, filter bson.M) ([]*model.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	sessions := []*model.Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, classify(err)
	}
	for _, s := range sessions {
		utc(s)
	}
	return sessions, nil
}

// SetMeeting writes all three meeting fields in one update. A concurrent writer for the
// same session overwrites them (last write wins).
func (r *sessionRepo) SetMeeting(ctx context.Context, id string, meeting *model.Meeting) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrNotFound
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"zoomMeetingId": meeting.MeetingID,
		"zoomJoinUrl":   meeting.JoinURL,
		"zoomStartUrl":  meeting.StartURL,
	}})
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// utc normalizes decoded BSON datetimes, which arrive in local time.
func utc(s *model.Session) {
	s.StartTime = s.StartTime.UTC()
	s.EndTime = s.EndTime.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
}
