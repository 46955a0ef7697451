package main

import (
	"strings"

	"github.com/gofrs/uuid"
)

var _ UIDHandler = (*IDsHandler)(nil)

// UIDHandler generates and checks ids made of a prefix and a uuid
// joined by a colon, like `r:<uuid>` for request ids.
type UIDHandler interface {
	Generate(prefix string) string
	IsValid(id, prefix string) bool
}

// IDsHandler implements UIDHandler with random (version 4) uuids.
type IDsHandler struct{}

func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate returns a new prefixed id. A time based uuid is used when
// the random source fails.
func (idh *IDsHandler) Generate(prefix string) string {
	id, err := uuid.NewV4()
	if err != nil {
		id = uuid.Must(uuid.NewV1())
	}
	return prefix + ":" + id.String()
}

// IsValid reports whether id carries the prefix followed by a non-nil
// uuid in its canonical lowercase form. Client supplied request ids in
// braced, urn or uppercase notation are rejected and replaced.
func (idh *IDsHandler) IsValid(id, prefix string) bool {
	raw, found := strings.CutPrefix(id, prefix+":")
	if !found || len(raw) != 36 {
		return false
	}
	u, err := uuid.FromString(raw)
	return err == nil && u != uuid.Nil && u.String() == raw
}
