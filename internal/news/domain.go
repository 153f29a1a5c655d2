package news

import "time"

// Publication statuses. Scheduled articles become published when their
// PublishAt time passes (see internal/jobs).
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusScheduled = "scheduled"
)

// ValidStatus reports whether the given status is a known enum value.
func ValidStatus(status string) bool {
	return status == StatusDraft || status == StatusPublished || status == StatusScheduled
}

// Article is one news item.
type Article struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	ContentHTML string     `json:"contentHtml"`
	Excerpt     string     `json:"excerpt"`
	Author      string     `json:"author"`
	Thumbnail   string     `json:"thumbnail"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	PublishAt   *time.Time `json:"publishAt"`
	Featured    bool       `json:"featured"`
	Views       int64      `json:"views"`
	Deleted     bool       `json:"-"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
