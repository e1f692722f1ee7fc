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

type photoDocument struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Filename       string               `bson:"filename"`
	OriginalName   string               `bson:"originalName"`
	StoragePath    string               `bson:"storagePath"`
	MimeType       string               `bson:"mimeType"`
	Size           int64                `bson:"size"`
	Day            int                  `bson:"day"`
	PhaseIndex     int                  `bson:"phaseIndex"`
	ModuleID       string               `bson:"moduleId"`
	ParticipantIDs []primitive.ObjectID `bson:"participantIds"`
	Caption        string               `bson:"caption"`
	Notes          string               `bson:"notes"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

func (d photoDocument) toModel() model.Photo {
	return model.Photo{
		ID:             d.ID.Hex(),
		Filename:       d.Filename,
		OriginalName:   d.OriginalName,
		StoragePath:    d.StoragePath,
		MimeType:       d.MimeType,
		Size:           d.Size,
		Day:            d.Day,
		PhaseIndex:     d.PhaseIndex,
		ModuleID:       d.ModuleID,
		ParticipantIDs: hexIDs(d.ParticipantIDs),
		Caption:        d.Caption,
		Notes:          d.Notes,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// PhotoMongo is a MongoDB implementation of repository.PhotoRepository.
type PhotoMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewPhotoMongo creates a repository over the photos collection of db.
func NewPhotoMongo(db *mongo.Database) *PhotoMongo {
	return &PhotoMongo{coll: db.Collection(PhotosCollection), now: time.Now}
}

var _ repository.PhotoRepository = (*PhotoMongo)(nil)

// Create inserts a new photo document.
func (r *PhotoMongo) Create(ctx context.Context, p *model.Photo) (*model.Photo, error) {
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := photoDocument{
		ID:             primitive.NewObjectID(),
		Filename:       p.Filename,
		OriginalName:   p.OriginalName,
		StoragePath:    p.StoragePath,
		MimeType:       p.MimeType,
		Size:           p.Size,
		Day:            p.Day,
		PhaseIndex:     p.PhaseIndex,
		ModuleID:       p.ModuleID,
		ParticipantIDs: objectIDs(p.ParticipantIDs),
		Caption:        p.Caption,
		Notes:          p.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// FindByID fetches a photo by its hex ObjectID.
func (r *PhotoMongo) FindByID(ctx context.Context, id string) (*model.Photo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc photoDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// List returns photos matching the filter, newest first.
func (r *PhotoMongo) List(ctx context.Context, f model.PhotoFilter) ([]model.Photo, error) {
	filter := bson.M{}
	if f.Day != nil {
		filter["day"] = *f.Day
	}
	if f.ModuleID != "" {
		filter["moduleId"] = f.ModuleID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]model.Photo, 0)
	for cur.Next(ctx) {
		var doc photoDocument
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

// Delete removes a photo document and returns it.
func (r *PhotoMongo) Delete(ctx context.Context, id string) (*model.Photo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc photoDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}
