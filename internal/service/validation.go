package service

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

var validate = validator.New()

// UploadRequest is the payload of PostUpload. Field order matters: the first
// failing field is the one reported.
type UploadRequest struct {
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=folder file image"`
	ParentID string `json:"parentId,omitempty"`
	IsPublic bool   `json:"isPublic,omitempty"`
	Data     string `json:"data,omitempty" validate:"required_unless=Type folder"`
}

// uploadInput is an UploadRequest that passed validation.
type uploadInput struct {
	name     string
	kind     models.Kind
	parentID models.ID
	isPublic bool
	data     []byte
}

// validateUpload checks required fields, decodes base64 data and parses the
// parent id. Parent existence is checked later, after authentication.
func validateUpload(req *UploadRequest) (*uploadInput, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	in := &uploadInput{
		name:     req.Name,
		kind:     models.Kind(req.Type),
		isPublic: req.IsPublic,
	}

	if in.kind.HasBlob() {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.Data))
		if err != nil {
			return nil, &models.ValidationError{Field: "data", Reason: "Invalid data"}
		}
		in.data = data
	}

	parentID, err := models.ParseID(req.ParentID)
	if err != nil {
		return nil, &models.ValidationError{Field: "parentId", Reason: "Invalid parentId"}
	}
	in.parentID = parentID
	return in, nil
}

// formatValidationError turns the first validator failure into a
// models.ValidationError naming the field.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &models.ValidationError{Field: "request", Reason: err.Error()}
	}
	e := verrs[0]
	field := strings.ToLower(e.Field()[:1]) + e.Field()[1:]
	switch {
	case field == "type" && e.Tag() == "oneof":
		return &models.ValidationError{Field: field, Reason: "Invalid type"}
	default:
		return &models.ValidationError{Field: field, Reason: "Missing " + field}
	}
}
