package api

import (
	"time"

	"github.com/ahakola/kbcenter-go/internal/kbid"
)

// User is the authenticated user's profile from GET /api/me.
type User struct {
	ID          string
	DisplayName string
	Email       string
}

// KnowledgeBase is one knowledge base the caller may access, including the
// caller's role in it. Returned by GET /api/knowledge-bases; the listing
// reflects server-side authorization.
type KnowledgeBase struct {
	ID          kbid.ID
	DisplayName string
	Role        string
}

// Article is a knowledge-base article. Body is only populated by single-
// article reads; list responses omit it.
type Article struct {
	ID         string    `json:"id"`
	KBID       kbid.ID   `json:"kbId"`
	CategoryID string    `json:"categoryId,omitempty"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Body       string    `json:"body,omitempty"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Category groups articles within a knowledge base.
type Category struct {
	ID           string  `json:"id"`
	KBID         kbid.ID `json:"kbId"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	ArticleCount int     `json:"articleCount"`
}

// TeamMember is a user with a role in a knowledge base.
type TeamMember struct {
	ID          string  `json:"id"`
	KBID        kbid.ID `json:"kbId"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	Role        string  `json:"role"`
}

// AnalyticsSummary is the usage rollup for one knowledge base. The
// aggregation happens server-side; this client only displays it.
type AnalyticsSummary struct {
	KBID          kbid.ID   `json:"kbId"`
	TotalViews    int64     `json:"totalViews"`
	UniqueVisitor int64     `json:"uniqueVisitors"`
	TopArticleID  string    `json:"topArticleId,omitempty"`
	PeriodStart   time.Time `json:"periodStart"`
	PeriodEnd     time.Time `json:"periodEnd"`
}
