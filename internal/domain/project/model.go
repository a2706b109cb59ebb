package project

import (
	"time"

	"github.com/google/uuid"
)

// DefaultImageURL is the thumbnail shown for projects without one.
const DefaultImageURL = "https://picsum.photos/seed/forge/600/400"

// Project is a saved game project. The same shape is stored in both the
// device-local slot and the cloud store; a local project and a cloud copy
// created from it by SyncToCloud stay independent afterwards.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Script      string    `json:"script,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewLocal builds a project with a client-generated id, ready for
// SaveNewLocal. Collisions on the random id are treated as negligible; no
// uniqueness check is performed against the stored list.
func NewLocal(title, gameType, description, script, imageURL string) Project {
	if imageURL == "" {
		imageURL = DefaultImageURL
	}
	return Project{
		ID:          uuid.NewString(),
		Title:       title,
		Type:        gameType,
		Description: description,
		Script:      script,
		ImageURL:    imageURL,
		CreatedAt:   time.Now().UTC(),
	}
}
