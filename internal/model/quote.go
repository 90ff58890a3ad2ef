package model

import (
	"encoding/json"
	"time"
)

const (
	QuoteRequested   = "requested"
	QuoteReceived    = "received"
	QuoteShortlisted = "shortlisted"
	QuoteRejected    = "rejected"
)

type Supplier struct {
	ID           string    `json:"id"`
	CompanyName  string    `json:"companyName"`
	Category     string    `json:"category"`
	Location     *string   `json:"location"`
	Rating       float64   `json:"rating"`
	LeadTimeDays *int      `json:"leadTimeDays"`
	ContactEmail *string   `json:"contactEmail"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SupplierFilter matches case-insensitive substrings. Query spans name, category and location.
type SupplierFilter struct {
	Category string
	Location string
	Query    string
}

// RFQ is the request for quotation sent to every chosen supplier.
type RFQ struct {
	Quantity   int      `json:"quantity"`
	Materials  string   `json:"materials"`
	TargetCost *float64 `json:"targetCost,omitempty"`
	DueDate    *string  `json:"dueDate,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

// QuoteOffer is a supplier's answer to an RFQ.
type QuoteOffer struct {
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	LeadTimeDays int     `json:"leadTimeDays"`
	Notes        *string `json:"notes,omitempty"`
}

type Quote struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"projectId"`
	SupplierID     string          `json:"supplierId"`
	RFQ            json.RawMessage `json:"rfqJson"`
	Offer          json.RawMessage `json:"quoteJson"`
	Status         string          `json:"status"`
	AttachmentURLs []string        `json:"attachmentUrls"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Supplier       *Supplier       `json:"supplier,omitempty"`
}
