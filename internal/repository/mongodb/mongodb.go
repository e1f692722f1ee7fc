// Package mongodb implements the repositories on a MongoDB database.
// Documents keep the field names of the original Mongoose collections
// (camelCase, createdAt/updatedAt) so existing data stays readable.
package mongodb

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ParticipantsCollection = "participants"
	PhotosCollection       = "photos"
)

// objectIDs parses the hex ids, skipping malformed ones.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}

func hexIDs(oids []primitive.ObjectID) []string {
	out := make([]string, len(oids))
	for i, oid := range oids {
		out[i] = oid.Hex()
	}
	return out
}
