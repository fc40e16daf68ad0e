package domain

import (
	"time"

	"github.com/google/uuid"
)

// Qualification tiers.
const (
	QualificationCold = "cold"
	QualificationWarm = "warm"
	QualificationHot  = "hot"
)

// Lead statuses.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

// Origins that carry meaning for scoring or for the webhook adapters.
const (
	OriginAPI      = "api"
	OriginReferral = "referral"
	OriginWebsite  = "website"
	OriginSocial   = "social"
	OriginMetaAds  = "meta_ads"
	OriginForm     = "form"
)

// MetadataScoringKey is where the scoring result is folded into lead metadata.
const MetadataScoringKey = "scoring"

// Draft is a canonical lead that has not been persisted yet.
// An empty Qualification means the caller did not supply one.
type Draft struct {
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Company       string         `json:"company"`
	Origin        string         `json:"origin"`
	Qualification string         `json:"qualification"`
	Status        string         `json:"status"`
	Value         float64        `json:"value"`
	Notes         string         `json:"notes"`
	Metadata      map[string]any `json:"metadata"`
	ProductID     *uuid.UUID     `json:"product_id"`
}

// Lead is a persisted lead.
type Lead struct {
	ID uuid.UUID `json:"id"`
	Draft
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Channel identifies which entry path produced a lead.
type Channel string

const (
	ChannelDirectAPI Channel = "direct_api"
	ChannelMeta      Channel = "webhook_meta"
	ChannelForm      Channel = "webhook_form"
)

// Ingestion states recorded for every lead ingestion event.
const (
	StateReceived           = "RECEIVED"
	StateAdapted            = "ADAPTED"
	StateValidated          = "VALIDATED"
	StateScored             = "SCORED"
	StatePersisted          = "PERSISTED"
	StateNotified           = "NOTIFIED"
	StateResponded          = "RESPONDED"
	StateRejectedAuth       = "REJECTED_AUTH"
	StateRejectedValidation = "REJECTED_VALIDATION"
	StateRejectedStore      = "REJECTED_STORE"
)
