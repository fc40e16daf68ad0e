package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"nuvra_crm_backend/internal/leads/domain"
)

const (
	unknownName = "Unknown"
	metaNotes   = "Lead from Meta Ads campaign"
	formNotes   = "Lead from external form"
)

var (
	errNotObject    = errors.New("payload is not a JSON object")
	errTrailingData = errors.New("payload has data after the JSON object")
)

// Payload is a raw third-party lead payload of a known source.
type Payload interface {
	Channel() domain.Channel
	// HasIdentity reports whether the payload carries an email or a name-bearing field.
	HasIdentity() bool
	// Normalize maps the payload into a canonical lead draft. It never touches the network or the store.
	Normalize() domain.Draft
}

// MetaPayload is a lead delivered by a Meta Lead Ads webhook.
type MetaPayload struct {
	raw map[string]any
}

// FormPayload is a lead delivered by a generic external form.
type FormPayload struct {
	raw map[string]any
}

// Decode parses body into the payload variant for channel.
// Numbers are kept as json.Number so campaign and ad ids survive unchanged.
func Decode(channel domain.Channel, body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	if raw == nil {
		return nil, errNotObject
	}

	switch channel {
	case domain.ChannelMeta:
		return MetaPayload{raw: raw}, nil
	case domain.ChannelForm:
		return FormPayload{raw: raw}, nil
	default:
		return nil, errors.New("unknown webhook channel " + string(channel))
	}
}

func (MetaPayload) Channel() domain.Channel { return domain.ChannelMeta }

func (p MetaPayload) HasIdentity() bool {
	return present(p.raw, "email") || present(p.raw, "full_name") || present(p.raw, "name")
}

func (p MetaPayload) Normalize() domain.Draft {
	return domain.Draft{
		Name:          firstText(p.raw, unknownName, "full_name", "name"),
		Email:         firstText(p.raw, "", "email"),
		Phone:         firstText(p.raw, "", "phone_number", "phone"),
		Company:       firstText(p.raw, "", "company_name"),
		Origin:        domain.OriginMetaAds,
		Qualification: domain.QualificationWarm,
		Status:        domain.StatusNew,
		Value:         0,
		Notes:         metaNotes,
		Metadata: map[string]any{
			"campaign_id": p.raw["campaign_id"],
			"ad_id":       p.raw["ad_id"],
			"form_id":     p.raw["form_id"],
			"raw":         p.raw,
		},
	}
}

func (FormPayload) Channel() domain.Channel { return domain.ChannelForm }

func (p FormPayload) HasIdentity() bool {
	return present(p.raw, "email") || present(p.raw, "name") || present(p.raw, "full_name")
}

func (p FormPayload) Normalize() domain.Draft {
	return domain.Draft{
		Name:          firstText(p.raw, unknownName, "name", "full_name"),
		Email:         firstText(p.raw, "", "email"),
		Phone:         firstText(p.raw, "", "phone", "phone_number"),
		Company:       firstText(p.raw, "", "company", "company_name"),
		Origin:        firstText(p.raw, domain.OriginForm, "source"),
		Qualification: domain.QualificationCold,
		Status:        domain.StatusNew,
		Value:         0,
		Notes:         firstText(p.raw, formNotes, "message", "notes"),
		Metadata: map[string]any{
			"form_name": p.raw["form_name"],
			"form_url":  p.raw["form_url"],
			"raw":       p.raw,
		},
	}
}

// present reports whether key holds a non-empty value.
func present(raw map[string]any, key string) bool {
	return text(raw[key]) != ""
}

// firstText returns the first non-empty value among keys, or fallback.
func firstText(raw map[string]any, fallback string, keys ...string) string {
	for _, key := range keys {
		if value := text(raw[key]); value != "" {
			return value
		}
	}
	return fallback
}

func text(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		if v {
			return strconv.FormatBool(v)
		}
	}
	return ""
}
