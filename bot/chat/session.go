package chat

import (
	"WhatsGrapp/entity"
	"time"
)

// Session is the per-phone conversation state.
type Session struct {
	ID           string         `json:"id" bson:"id"`
	Phone        string         `json:"phone" bson:"phone"`
	CurrentStep  StepID         `json:"current_step" bson:"current_step"`
	Data         SessionData    `json:"data" bson:"data"`
	History      []HistoryEntry `json:"history" bson:"history"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	LastActivity time.Time      `json:"last_activity" bson:"last_activity"`
	ExpiresAt    time.Time      `json:"expires_at" bson:"expires_at"`
}

// SessionData accumulates everything the conversation collected.
// Answers holds the raw accepted input per step; the typed fields are what
// handlers derive from it.
type SessionData struct {
	Answers  map[StepID]string `json:"answers" bson:"answers"`
	Store    StoreDraft        `json:"store" bson:"store"`
	Draft    ProductDraft      `json:"draft" bson:"draft"`
	Products []ProductDraft    `json:"products" bson:"products"`
	Status   string            `json:"status,omitempty" bson:"status,omitempty"`
}

type StoreDraft struct {
	Name       string          `json:"name" bson:"name"`
	Details    string          `json:"details" bson:"details"`
	Currency   entity.Currency `json:"currency" bson:"currency"`
	Locale     string          `json:"locale" bson:"locale"`
	MerchantID string          `json:"merchant_id" bson:"merchant_id"`
}

// ProductDraft is a product added during the conversation. ID is empty when
// the catalog write failed; Reference is always set.
type ProductDraft struct {
	ID        string  `json:"id" bson:"id"`
	Reference string  `json:"reference" bson:"reference"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Stock     int     `json:"stock" bson:"stock"`
}

// CheckoutKey is the product segment of the checkout link.
func (p ProductDraft) CheckoutKey() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Reference
}

type HistoryEntry struct {
	Step      StepID    `json:"step" bson:"step"`
	Input     string    `json:"input" bson:"input"`
	Output    string    `json:"output" bson:"output"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Patch is a partial session update. Zero fields are left unchanged.
type Patch struct {
	CurrentStep StepID
	Data        *SessionData
	History     []HistoryEntry
}

func NewSessionData() SessionData {
	return SessionData{Answers: make(map[StepID]string)}
}

func (d *SessionData) Answer(step StepID) string {
	return d.Answers[step]
}

func (d *SessionData) SetAnswer(step StepID, value string) {
	if d.Answers == nil {
		d.Answers = make(map[StepID]string)
	}
	d.Answers[step] = value
}

// LastProduct returns the most recently added product.
func (d *SessionData) LastProduct() (ProductDraft, bool) {
	if len(d.Products) == 0 {
		return ProductDraft{}, false
	}
	return d.Products[len(d.Products)-1], true
}

func (d SessionData) Clone() SessionData {
	c := d
	c.Answers = make(map[StepID]string, len(d.Answers))
	for k, v := range d.Answers {
		c.Answers[k] = v
	}
	if d.Products != nil {
		c.Products = append([]ProductDraft(nil), d.Products...)
	}
	return c
}

func (s *Session) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

func (s *Session) Clone() *Session {
	c := *s
	c.Data = s.Data.Clone()
	if s.History != nil {
		c.History = append([]HistoryEntry(nil), s.History...)
	}
	return &c
}
