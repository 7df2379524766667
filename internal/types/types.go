package types

import "time"

// FAQ is a configured question/answer pair included in reply prompts.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SpecialOffer is a promotion the assistant may mention.
type SpecialOffer struct {
	Title     string     `json:"title"`
	Details   string     `json:"details,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// DayHours holds opening hours for a single weekday.
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// StoreHours holds the per-weekday schedule for a business.
type StoreHours struct {
	Timezone string              `json:"timezone,omitempty"`
	Days     map[string]DayHours `json:"days,omitempty"`
	Holidays []string            `json:"holidays,omitempty"`
}

// AIConfig holds the per-business reply generation settings.
type AIConfig struct {
	Enabled           bool
	Greeting          string
	Tone              string
	Instructions      string
	ForbiddenTopics   []string
	FAQs              []FAQ
	SpecialOffers     []SpecialOffer
	MaxResponseLength int
	Language          string
}

// Policies holds the customer-facing policy texts.
type Policies struct {
	Refund   string `json:"refund_policy"`
	Return   string `json:"return_policy"`
	Shipping string `json:"shipping_policy"`
	Privacy  string `json:"privacy_policy"`
	Terms    string `json:"terms_policy"`
}

// BusinessInfo is a business row with its routing keys and AI configuration.
type BusinessInfo struct {
	ID                 string
	AccountID          string
	Name               string
	PhoneNumberID      string
	PageID             string
	InstagramAccountID string
	AccessToken        string
	VerifyToken        *string
	AI                 AIConfig
	Policies           Policies
	Hours              *StoreHours
	EscalationKeywords []string
	MessageCount       int64
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Conversation modes. Mode decides which actor owns replying.
const (
	ModeAI     = "ai"
	ModeHuman  = "human"
	ModePaused = "paused"
)

// Conversation is one customer thread on one channel of one business.
type Conversation struct {
	ID                  string
	BusinessID          string
	CustomerAddress     string
	Channel             string
	Mode                string
	EscalationRequested bool
	EscalationReason    string
	EscalatedAt         *time.Time
	AssignedTo          *string
	EscalationCount     int
	LastActivityAt      time.Time
	CreatedAt           time.Time
}

// StoredMessage is one row of the append-only message log.
type StoredMessage struct {
	ID               string
	ConversationID   string
	BusinessID       string
	Direction        string // incoming | outgoing
	SenderAddress    string
	RecipientAddress string
	Text             string
	Channel          string
	Kind             string // text | comment
	CreatedAt        time.Time
}

// Product is a catalog item, optionally carrying a semantic embedding.
type Product struct {
	ID             string
	BusinessID     string
	Name           string
	Description    string
	Price          float64
	SalePrice      *float64
	Category       string
	ImageURL       string
	SKU            string
	ExternalID     string
	Stock          int
	SourcePlatform string
	EmbeddingModel *string
	EmbeddedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProductMatch is a product returned by similarity search, with its
// cosine distance to the query.
type ProductMatch struct {
	Product
	Distance float64
}

// Integration tracks one connected source platform per business.
type Integration struct {
	ID           string
	BusinessID   string
	Platform     string
	Active       bool
	LastSyncedAt *time.Time
	ProductCount int
}
