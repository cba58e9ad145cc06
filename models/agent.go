package models

// Agent is a brokerage agent; listings reference it through Property.AgentID.
type Agent struct {
	ID          string      `json:"id" yaml:"id" db:"id"`
	Name        string      `json:"name" yaml:"name" db:"name"`
	Title       string      `json:"title" yaml:"title" db:"title"`
	Image       string      `json:"image" yaml:"image" db:"image"`
	Phone       string      `json:"phone" yaml:"phone" db:"phone"`
	Email       string      `json:"email" yaml:"email" db:"email"`
	Bio         string      `json:"bio" yaml:"bio" db:"bio"`
	Experience  int         `json:"experience" yaml:"experience" db:"experience"` // years
	Specialties []string    `json:"specialties" yaml:"specialties" db:"specialties"`
	Languages   []string    `json:"languages" yaml:"languages" db:"languages"`
	Sales       int         `json:"sales" yaml:"sales" db:"sales"`
	Rating      float64     `json:"rating" yaml:"rating" db:"rating"` // 0-5
	Reviews     int         `json:"reviews" yaml:"reviews" db:"reviews"`
	Social      SocialLinks `json:"social" yaml:"social" db:"social"`
}

// SocialLinks holds optional per-platform profile URLs
type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty" yaml:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty" yaml:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	Twitter   string `json:"twitter,omitempty" yaml:"twitter,omitempty"`
}
