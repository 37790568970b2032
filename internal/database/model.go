package database

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

// fileDocument is the shape of a record in the "files" collection.
type fileDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"userId"`
	Name      string        `bson:"name"`
	Type      string        `bson:"type"`
	IsPublic  bool          `bson:"isPublic"`
	ParentID  string        `bson:"parentId"`
	LocalPath string        `bson:"localPath,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func newFileDocument(rec *models.FileRecord) *fileDocument {
	parent := rec.ParentID
	if parent == "" {
		parent = models.RootID
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &fileDocument{
		UserID:    rec.OwnerID,
		Name:      rec.Name,
		Type:      string(rec.Kind),
		IsPublic:  rec.IsPublic,
		ParentID:  string(parent),
		LocalPath: rec.LocalPath,
		CreatedAt: created,
	}
}

func (d *fileDocument) record() *models.FileRecord {
	return &models.FileRecord{
		ID:        models.ID(d.ID.Hex()),
		OwnerID:   d.UserID,
		Name:      d.Name,
		Kind:      models.Kind(d.Type),
		IsPublic:  d.IsPublic,
		ParentID:  models.ID(d.ParentID),
		LocalPath: d.LocalPath,
		CreatedAt: d.CreatedAt,
	}
}

// objectID converts a validated id. Root and malformed ids have no document.
func objectID(id models.ID) (bson.ObjectID, bool) {
	if id.IsRoot() {
		return bson.ObjectID{}, false
	}
	oid, err := bson.ObjectIDFromHex(string(id))
	if err != nil {
		return bson.ObjectID{}, false
	}
	return oid, true
}
