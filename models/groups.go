package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a presentation group member. ID is nil until the member has been
// persisted; exactly one member per group has IsCreator set.
type Member struct {
	ID        *int64 `json:"id,omitempty"`
	Name      string `json:"name"`
	IsCreator bool   `json:"isCreator"`
}

// PresentationGroup represents a presentation group, its members and its
// at-most-one current file.
type PresentationGroup struct {
	ID        uuid.UUID `json:"id"`
	Creator   string    `json:"creator"`
	File      *FileRef  `json:"file,omitempty"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateGroupRequest is the payload for creating a presentation group.
type CreateGroupRequest struct {
	CreatorName string `json:"creatorName"`
}

// ReplaceMembersRequest is the payload for a batch member replace. The list
// is the full desired member set for the group, not an incremental diff.
type ReplaceMembersRequest struct {
	Members []Member `json:"members"`
}
