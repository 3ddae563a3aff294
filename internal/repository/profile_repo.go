package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studyhub/internal/model"
)

// ProfileRepo reads user and tutor profiles. Profile ids are the identity provider's
// user ids, stored as string _id values.
type ProfileRepo interface {
	GetUser(ctx context.Context, id string) (*model.UserProfile, error)
	GetTutor(ctx context.Context, id string) (*model.TutorProfile, error)
	ListTutors(ctx context.Context) ([]*model.TutorProfile, error)
	UpsertUser(ctx context.Context, user *model.UserProfile) error
	UpsertTutor(ctx context.Context, tutor *model.TutorProfile) error
}

type profileRepo struct {
	users  *mongo.Collection
	tutors *mongo.Collection
}

// NewProfileRepo creates a profile repository over the users and tutors collections
func NewProfileRepo(db *mongo.Database) ProfileRepo {
	return &profileRepo{
		users:  db.Collection("users"),
		tutors: db.Collection("tutors"),
	}
}

func (r *profileRepo) GetUser(ctx context.Context, id string) (*model.UserProfile, error) {
	var user model.UserProfile
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

func (r *profileRepo) GetTutor(ctx context.Context, id string) (*model.TutorProfile, error) {
	var tutor model.TutorProfile
	err := r.tutors.FindOne(ctx, bson.M{"_id": id}).Decode(&tutor)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &tutor, nil
}

func (r *profileRepo) ListTutors(ctx context.Context) ([]*model.TutorProfile, error) {
	cursor, err := r.tutors.Find(ctx, bson.M{})
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	tutors := []*model.TutorProfile{}
	if err := cursor.All(ctx, &tutors); err != nil {
		return nil, classify(err)
	}
	return tutors, nil
}

func (r *profileRepo) UpsertUser(ctx context.Context, user *model.UserProfile) error {
	_, err := r.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	return classify(err)
}

func (r *profileRepo) UpsertTutor(ctx context.Context, tutor *model.TutorProfile) error {
	_, err := r.tutors.ReplaceOne(ctx, bson.M{"_id": tutor.ID}, tutor, options.Replace().SetUpsert(true))
	return classify(err)
}
