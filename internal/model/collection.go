package model

// Typed payloads for the content collections. The store keeps these as
// opaque JSON inside Record.Payload; the public pages decode them for
// rendering, and the admin forms produce them.

// Skill is the payload for the skills collection.
type Skill struct {
	Category string `json:"category,omitempty"`
	Level    string `json:"level,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Experience is the payload for the experiences collection.
type Experience struct {
	Company   string `json:"company"`
	Role      string `json:"role"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// Project is the payload for the projects collection.
type Project struct {
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	RepoURL     string   `json:"repo_url,omitempty"`
	LiveURL     string   `json:"live_url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// Certification is the payload for the certifications collection.
type Certification struct {
	Issuer        string `json:"issuer"`
	IssuedAt      string `json:"issued_at,omitempty"`
	CredentialURL string `json:"credential_url,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
}

// Event is the payload for the events collection.
type Event struct {
	Location    string `json:"location,omitempty"`
	StartsAt    string `json:"starts_at,omitempty"`
	EndsAt      string `json:"ends_at,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// BlogPost is the payload for the blogs collection.
type BlogPost struct {
	Summary     string `json:"summary,omitempty"`
	Body        string `json:"body,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// Social is the payload for the socials collection.
type Social struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	IconURL  string `json:"icon_url,omitempty"`
}

// GalleryItem is the payload for the gallery collection.
type GalleryItem struct {
	Caption  string `json:"caption,omitempty"`
	ImageURL string `json:"image_url"`
}
