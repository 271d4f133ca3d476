package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

type User struct {
	ID           int       `gorm:"primary_key;autoIncrement" json:"id"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
	Name         string    `json:"name"`
	Role         string    `gorm:"not null;default:'client';index" json:"role"` // admin or client
	CreatedAt    time.Time `json:"created_at"`
}

type ServicePackage struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	Name         string `gorm:"unique;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	PriceCents   int    `gorm:"not null" json:"price_cents"` // billed monthly
	KeywordLimit int    `gorm:"not null;default:10" json:"keyword_limit"`
	PageLimit    int    `gorm:"not null;default:5" json:"page_limit"`
}

type Client struct {
	ID        int       `gorm:"primary_key;autoIncrement" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex" json:"user_id"` // exactly one client per user
	PackageID int       `gorm:"not null;index" json:"package_id"`
	Company   string    `gorm:"not null" json:"company"`
	Website   string    `json:"website"`
	Status    string    `gorm:"not null;default:'active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Deliverable struct {
	ID          int        `gorm:"primary_key;autoIncrement" json:"id"`
	ClientID    int        `gorm:"not null;index" json:"client_id"`
	Title       string     `gorm:"not null" json:"title"`
	Notes       string     `gorm:"type:text" json:"notes"` // markdown
	Status      string     `gorm:"not null;default:'pending'" json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Invoice struct {
	ID          int       `gorm:"primary_key;autoIncrement" json:"id"`
	ClientID    int       `gorm:"not null;index" json:"client_id"`
	Number      string    `gorm:"unique;not null" json:"number"`
	AmountCents int       `gorm:"not null" json:"amount_cents"`
	Status      string    `gorm:"not null;default:'unpaid'" json:"status"` // flips to paid only via a recorded payment
	IssuedAt    time.Time `json:"issued_at"`
	DueAt       time.Time `json:"due_at"`
}

type Payment struct {
	ID          int       `gorm:"primary_key;autoIncrement" json:"id"`
	InvoiceID   int       `gorm:"not null;index" json:"invoice_id"`
	AmountCents int       `gorm:"not null" json:"amount_cents"`
	Method      string    `json:"method"` // manually recorded, no gateway
	Reference   string    `json:"reference"`
	PaidAt      time.Time `json:"paid_at"`
}

type SEOMetric struct {
	ID            int       `gorm:"primary_key;autoIncrement" json:"id"`
	ClientID      int       `gorm:"not null;index" json:"client_id"`
	OrganicVisits int       `gorm:"not null;default:0" json:"organic_visits"`
	BacklinkCount int       `gorm:"not null;default:0" json:"backlink_count"`
	RecordedAt    time.Time `gorm:"index" json:"recorded_at"`
}

type TrackedKeyword struct {
	ID           int       `gorm:"primary_key;autoIncrement" json:"id"`
	ClientID     int       `gorm:"not null;index" json:"client_id"`
	Keyword      string    `gorm:"not null" json:"keyword"`
	SearchVolume *int      `json:"search_volume,omitempty"`
	CurrentRank  *int      `json:"current_rank,omitempty"`
	TargetRank   *int      `json:"target_rank,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Project struct {
	ID             int       `gorm:"primary_key;autoIncrement" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Niche          string    `json:"niche"`
	Domain         string    `json:"domain"`
	TargetKeywords string    `gorm:"type:text" json:"target_keywords"`
	Description    string    `gorm:"type:text" json:"description"`
	SeoScore       int       `gorm:"default:0" json:"seo_score"` // mirrors checklist completion
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Page struct {
	ID              int       `gorm:"primary_key;autoIncrement" json:"id"`
	ProjectID       int       `gorm:"not null;index" json:"project_id"`
	Title           string    `gorm:"not null" json:"title"`
	Slug            string    `json:"slug"`
	PageType        string    `json:"page_type"`
	MetaTitle       string    `json:"meta_title"`
	MetaDescription string    `gorm:"type:text" json:"meta_description"`
	H1Tag           string    `json:"h1_tag"`
	Content         string    `gorm:"type:text" json:"content"`
	SeoScore        int       `gorm:"default:0" json:"seo_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Keyword struct {
	ID           int       `gorm:"primary_key;autoIncrement" json:"id"`
	ProjectID    int       `gorm:"not null;index" json:"project_id"`
	Keyword      string    `gorm:"not null" json:"keyword"`
	SearchVolume *int      `json:"search_volume,omitempty"`
	Difficulty   string    `json:"difficulty"`
	CurrentRank  *int      `json:"current_rank,omitempty"`
	TargetRank   *int      `json:"target_rank,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SEOChecklist is the fixed 14-item onboarding checklist, one per project.
type SEOChecklist struct {
	ID        int `gorm:"primary_key;autoIncrement" json:"id"`
	ProjectID int `gorm:"not null;uniqueIndex" json:"project_id"`

	DomainSelected     bool `gorm:"default:false" json:"domain_selected"`
	HostingSetup       bool `gorm:"default:false" json:"hosting_setup"`
	SSLInstalled       bool `gorm:"default:false" json:"ssl_installed"`
	CorePagesCreated   bool `gorm:"default:false" json:"core_pages_created"`
	KeywordResearch    bool `gorm:"default:false" json:"keyword_research_done"`
	ContentOptimized   bool `gorm:"default:false" json:"content_optimized"`
	MetaTagsSet        bool `gorm:"default:false" json:"meta_tags_set"`
	ImagesOptimized    bool `gorm:"default:false" json:"images_optimized"`
	SiteSpeedOptimized bool `gorm:"default:false" json:"site_speed_optimized"`
	MobileFriendly     bool `gorm:"default:false" json:"mobile_friendly"`
	AnalyticsSetup     bool `gorm:"default:false" json:"analytics_setup"`
	SearchConsoleSetup bool `gorm:"default:false" json:"search_console_setup"`
	SitemapSubmitted   bool `gorm:"default:false" json:"sitemap_submitted"`
	BacklinksStarted   bool `gorm:"default:false" json:"backlinks_started"`

	UpdatedAt time.Time `json:"updated_at"`
}

type Backlink struct {
	ID              int       `gorm:"primary_key;autoIncrement" json:"id"`
	ProjectID       int       `gorm:"not null;index" json:"project_id"`
	SourceURL       string    `json:"source_url"`
	TargetURL       string    `json:"target_url"`
	AnchorText      string    `json:"anchor_text"`
	DomainAuthority *int      `json:"domain_authority,omitempty"`
	Status          string    `gorm:"default:'pending'" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
