package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ID identifies a FileRecord. It is either RootID or the hex form of a
// document object id.
type ID string

// RootID is the parent of every top level record.
const RootID ID = "0"

// ParseID validates an identifier coming from a request. Empty input, "0"
// and "root" all mean RootID.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", string(RootID), "root":
		return RootID, nil
	}
	if _, err := bson.ObjectIDFromHex(s); err != nil {
		return "", &ValidationError{Field: "id", Reason: "Invalid id"}
	}
	return ID(strings.ToLower(s)), nil
}

// ParseFileID is ParseID for values that must name a concrete record.
func ParseFileID(s string) (ID, error) {
	id, err := ParseID(s)
	if err != nil {
		return "", err
	}
	if id.IsRoot() {
		return "", &ValidationError{Field: "id", Reason: "Invalid id"}
	}
	return id, nil
}

// NewID returns a fresh identifier.
func NewID() ID {
	return ID(bson.NewObjectID().Hex())
}

func (id ID) IsRoot() bool { return id == RootID || id == "" }

func (id ID) String() string { return string(id) }

// Kind is the type of a FileRecord.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
	KindImage  Kind = "image"
)

// HasBlob reports whether records of this kind carry file bytes.
func (k Kind) HasBlob() bool { return k == KindFile || k == KindImage }

// Field names accepted by UpdateField.
const (
	FieldIsPublic = "isPublic"
)

type FileRecord struct {
	ID        ID        `json:"id"`
	OwnerID   string    `json:"userId"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"type"`
	IsPublic  bool      `json:"isPublic"`
	ParentID  ID        `json:"parentId"`
	LocalPath string    `json:"localPath,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// VisibleTo reports whether ownerID may read the record.
func (f *FileRecord) VisibleTo(ownerID string) bool {
	return f.IsPublic || f.OwnerID == ownerID
}
