package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodmemories/internal/model"
	"foodmemories/internal/repository"
)

type participantDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Dietary   string             `bson:"dietary"`
	Cultural  string             `bson:"cultural"`
	Notes     string             `bson:"notes"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d participantDocument) toModel() model.Participant {
	return model.Participant{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Dietary:   d.Dietary,
		Cultural:  d.Cultural,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ParticipantMongo is a MongoDB implementation of repository.ParticipantRepository.
type ParticipantMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewParticipantMongo creates a repository over the participants collection of db.
func NewParticipantMongo(db *mongo.Database) *ParticipantMongo {
	return &ParticipantMongo{coll: db.Collection(ParticipantsCollection), now: time.Now}
}

var _ repository.ParticipantRepository = (*ParticipantMongo)(nil)

func (r *ParticipantMongo) timestamp() time.Time {
	// BSON dates carry millisecond precision.
	return r.now().UTC().Truncate(time.Millisecond)
}

// Create inserts a new participant document.
func (r *ParticipantMongo) Create(ctx context.Context, f model.ParticipantFields) (*model.Participant, error) {
	now := r.timestamp()
	doc := participantDocument{
		ID:        primitive.NewObjectID(),
		Name:      f.Name,
		Email:     f.Email,
		Dietary:   f.Dietary,
		Cultural:  f.Cultural,
		Notes:     f.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	p := doc.toModel()
	return &p, nil
}

// FindByID fetches a participant by its hex ObjectID.
func (r *ParticipantMongo) FindByID(ctx context.Context, id string) (*model.Participant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc participantDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p := doc.toModel()
	return &p, nil
}

// FindByIDs returns the participants that exist among ids.
func (r *ParticipantMongo) FindByIDs(ctx context.Context, ids []string) ([]model.Participant, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []model.Participant{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

// List returns all participants, newest first.
func (r *ParticipantMongo) List(ctx context.Context) ([]model.Participant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

// Update replaces the editable fields and returns the updated document.
func (r *ParticipantMongo) Update(ctx context.Context, id string, f model.ParticipantFields) (*model.Participant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	update := bson.M{"$set": bson.M{
		"name":      f.Name,
		"email":     f.Email,
		"dietary":   f.Dietary,
		"cultural":  f.Cultural,
		"notes":     f.Notes,
		"updatedAt": r.timestamp(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc participantDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p := doc.toModel()
	return &p, nil
}

// Delete removes a participant document.
func (r *ParticipantMongo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ParticipantMongo) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]model.Participant, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]model.Participant, 0)
	for cur.Next(ctx) {
		var doc participantDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
