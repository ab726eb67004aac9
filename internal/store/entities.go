package store

import "time"

// Project is one tracked site.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// RankRecord is one observed SERP position for a project keyword.
type RankRecord struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Keyword   string    `json:"keyword"`
	Position  int       `json:"position"`
	CheckedAt time.Time `json:"checked_at"`
}

// Backlink is one known inbound link for a project.
type Backlink struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	SourceURL string    `json:"source_url"`
	TargetURL string    `json:"target_url"`
	Anchor    string    `json:"anchor,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// Stores bundles the service's keyed collections for injection.
type Stores struct {
	Projects  *Keyed[Project]
	Ranks     *Keyed[RankRecord]
	Backlinks *Keyed[Backlink]
}

// NewStores returns empty collections.
func NewStores() *Stores {
	return &Stores{
		Projects:  NewKeyed[Project](),
		Ranks:     NewKeyed[RankRecord](),
		Backlinks: NewKeyed[Backlink](),
	}
}
