package webhook

import (
	"encoding/json"
	"testing"

	"nuvra_crm_backend/internal/leads/domain"
)

func decode(t *testing.T, channel domain.Channel, body string) Payload {
	t.Helper()
	p, err := Decode(channel, []byte(body))
	if err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return p
}

func TestMetaNormalize(t *testing.T) {
	p := decode(t, domain.ChannelMeta, `{"full_name":"Ana","email":"a@x.com"}`)

	if !p.HasIdentity() {
		t.Fatal("expected identity")
	}
	d := p.Normalize()
	if d.Name != "Ana" || d.Email != "a@x.com" {
		t.Fatalf("unexpected contact fields %+v", d)
	}
	if d.Origin != domain.OriginMetaAds || d.Qualification != domain.QualificationWarm || d.Status != domain.StatusNew {
		t.Fatalf("unexpected defaults origin=%s qualification=%s status=%s", d.Origin, d.Qualification, d.Status)
	}
	if d.Value != 0 || d.Notes != metaNotes {
		t.Fatalf("unexpected value/notes %v %q", d.Value, d.Notes)
	}
	if d.ProductID != nil {
		t.Fatal("webhook drafts never carry a product")
	}
}

func TestMetaFieldFallbacks(t *testing.T) {
	p := decode(t, domain.ChannelMeta, `{
		"name": "Bruno",
		"phone": "+5511999999999",
		"company_name": "Acme",
		"campaign_id": 120200000000000001,
		"ad_id": "ad-9",
		"form_id": "f-1"
	}`)

	d := p.Normalize()
	if d.Name != "Bruno" || d.Phone != "+5511999999999" || d.Company != "Acme" {
		t.Fatalf("unexpected draft %+v", d)
	}
	if d.Metadata["campaign_id"] != json.Number("120200000000000001") {
		t.Fatalf("campaign id lost precision: %v", d.Metadata["campaign_id"])
	}
	if d.Metadata["ad_id"] != "ad-9" || d.Metadata["form_id"] != "f-1" {
		t.Fatalf("unexpected metadata %v", d.Metadata)
	}
	raw, ok := d.Metadata["raw"].(map[string]any)
	if !ok || raw["name"] != "Bruno" {
		t.Fatalf("raw payload not folded into metadata: %v", d.Metadata["raw"])
	}
}

func TestMetaPrefersFullName(t *testing.T) {
	d := decode(t, domain.ChannelMeta, `{"full_name":"Ana Lima","name":"ana","phone_number":"1","phone":"2"}`).Normalize()
	if d.Name != "Ana Lima" || d.Phone != "1" {
		t.Fatalf("wrong precedence: %+v", d)
	}
}

func TestFormNormalize(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		wantName   string
		wantOrigin string
		wantNotes  string
		wantComp   string
	}{
		{"defaults", `{"email":"c@x.com"}`, unknownName, domain.OriginForm, formNotes, ""},
		{"full name fallback", `{"full_name":"Caio","company_name":"Beta"}`, "Caio", domain.OriginForm, formNotes, "Beta"},
		{"source and message", `{"name":"Dora","source":"landing","message":"call me","notes":"n"}`, "Dora", "landing", "call me", ""},
		{"notes fallback", `{"name":"Eva","notes":"later","company":"Gamma","company_name":"x"}`, "Eva", domain.OriginForm, "later", "Gamma"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := decode(t, domain.ChannelForm, tc.body).Normalize()
			if d.Name != tc.wantName || d.Origin != tc.wantOrigin || d.Notes != tc.wantNotes || d.Company != tc.wantComp {
				t.Fatalf("got name=%q origin=%q notes=%q company=%q", d.Name, d.Origin, d.Notes, d.Company)
			}
			if d.Qualification != domain.QualificationCold || d.Status != domain.StatusNew {
				t.Fatalf("unexpected qualification/status %s/%s", d.Qualification, d.Status)
			}
		})
	}
}

func TestFormMetadata(t *testing.T) {
	d := decode(t, domain.ChannelForm, `{"email":"a@x.com","form_name":"Contato","form_url":"https://x.com/c"}`).Normalize()
	if d.Metadata["form_name"] != "Contato" || d.Metadata["form_url"] != "https://x.com/c" {
		t.Fatalf("unexpected metadata %v", d.Metadata)
	}
	if _, ok := d.Metadata["raw"]; !ok {
		t.Fatal("raw payload missing")
	}
}

func TestHasIdentity(t *testing.T) {
	cases := []struct {
		channel domain.Channel
		body    string
		want    bool
	}{
		{domain.ChannelMeta, `{"email":"a@x.com"}`, true},
		{domain.ChannelMeta, `{"name":"Ana"}`, true},
		{domain.ChannelMeta, `{"full_name":"  "}`, false},
		{domain.ChannelMeta, `{"phone":"123"}`, false},
		{domain.ChannelForm, `{"full_name":"Ana"}`, true},
		{domain.ChannelForm, `{"message":"hi"}`, false},
		{domain.ChannelForm, `{"email":null,"name":""}`, false},
	}

	for _, tc := range cases {
		if got := decode(t, tc.channel, tc.body).HasIdentity(); got != tc.want {
			t.Fatalf("%s %s: got %v want %v", tc.channel, tc.body, got, tc.want)
		}
	}
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	for _, body := range []string{`[]`, `"text"`, `null`, `not json`, ``, `{"email":"a@x.com"} garbage`, `{"email":"a@x.com"}}`, `{"a":1}{"b":2}`} {
		if _, err := Decode(domain.ChannelForm, []byte(body)); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}

func TestDecodeAllowsTrailingWhitespace(t *testing.T) {
	if _, err := Decode(domain.ChannelMeta, []byte("{\"email\":\"a@x.com\"}\n  ")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
