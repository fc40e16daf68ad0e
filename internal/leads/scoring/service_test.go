package scoring

import (
	"reflect"
	"testing"

	"nuvra_crm_backend/internal/leads/domain"
)

func TestScoreMaximal(t *testing.T) {
	lead := domain.Draft{
		Origin:  domain.OriginReferral,
		Company: "Acme",
		Phone:   "+5511999999999",
		Metadata: map[string]any{
			"usos":    float64(12),
			"budget":  float64(15000),
			"urgency": "high",
		},
	}

	got := Score(lead)

	want := Result{
		Qualification: domain.QualificationHot,
		Score:         115,
		Reasons: []string{
			"Referred lead (+30)",
			"High usage: 12 uses (+30)",
			"Large budget: $15000 (+25)",
			"High urgency (+15)",
			"Has company info (+10)",
			"Has phone number (+5)",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected result:\n got  %+v\n want %+v", got, want)
	}
}

func TestScoreEmpty(t *testing.T) {
	got := Score(domain.Draft{Origin: "newsletter"})
	if got.Score != 0 || got.Qualification != domain.QualificationCold || len(got.Reasons) != 0 {
		t.Fatalf("expected zero cold result, got %+v", got)
	}
}

func TestScoreTiersAreExclusive(t *testing.T) {
	cases := []struct {
		name   string
		meta   map[string]any
		score  int
		reason string
	}{
		{"usage high", map[string]any{"usos": float64(10)}, 30, "High usage: 10 uses (+30)"},
		{"usage medium", map[string]any{"usos": float64(9)}, 20, "Medium usage: 9 uses (+20)"},
		{"usage medium lower bound", map[string]any{"usos": float64(5)}, 20, "Medium usage: 5 uses (+20)"},
		{"usage low", map[string]any{"usos": float64(1)}, 10, "Low usage: 1 uses (+10)"},
		{"budget large", map[string]any{"budget": float64(10000)}, 25, "Large budget: $10000 (+25)"},
		{"budget medium", map[string]any{"budget": 7500.5}, 15, "Medium budget: $7500.5 (+15)"},
		{"budget small", map[string]any{"budget": 1000}, 5, "Small budget: $1000 (+5)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(domain.Draft{Metadata: tc.meta})
			if got.Score != tc.score {
				t.Fatalf("expected score %d, got %d", tc.score, got.Score)
			}
			if len(got.Reasons) != 1 || got.Reasons[0] != tc.reason {
				t.Fatalf("expected single reason %q, got %v", tc.reason, got.Reasons)
			}
		})
	}
}

func TestScoreIgnoresNonNumericSignals(t *testing.T) {
	got := Score(domain.Draft{Metadata: map[string]any{
		"usos":    "15",
		"budget":  "20000",
		"urgency": "HIGH",
	}})
	if got.Score != 0 {
		t.Fatalf("expected string signals to be ignored, got %+v", got)
	}

	below := Score(domain.Draft{Metadata: map[string]any{"usos": 0.5, "budget": float64(999)}})
	if below.Score != 0 {
		t.Fatalf("expected values below the lowest tier to score zero, got %+v", below)
	}
}

func TestOriginBonuses(t *testing.T) {
	cases := map[string]int{
		domain.OriginReferral: 30,
		domain.OriginWebsite:  20,
		domain.OriginSocial:   15,
		domain.OriginAPI:      10,
		domain.OriginMetaAds:  0,
		"":                    0,
	}
	for origin, want := range cases {
		if got := Score(domain.Draft{Origin: origin}).Score; got != want {
			t.Fatalf("origin %q: expected %d, got %d", origin, want, got)
		}
	}
}

func TestTierBoundaries(t *testing.T) {
	cases := map[int]string{
		70: domain.QualificationHot,
		69: domain.QualificationWarm,
		40: domain.QualificationWarm,
		39: domain.QualificationCold,
		0:  domain.QualificationCold,
	}
	for score, want := range cases {
		if got := Tier(score); got != want {
			t.Fatalf("Tier(%d) = %s, want %s", score, got, want)
		}
	}

	// referral(30) + medium usage(20) + medium budget(15) + phone(5) = 70
	exact := Score(domain.Draft{
		Origin:   domain.OriginReferral,
		Phone:    "123",
		Metadata: map[string]any{"usos": float64(5), "budget": float64(5000)},
	})
	if exact.Score != 70 || exact.Qualification != domain.QualificationHot {
		t.Fatalf("expected 70/hot, got %+v", exact)
	}

	// website(20) + medium usage(20) = 40
	warm := Score(domain.Draft{Origin: domain.OriginWebsite, Metadata: map[string]any{"usos": float64(7)}})
	if warm.Score != 40 || warm.Qualification != domain.QualificationWarm {
		t.Fatalf("expected 40/warm, got %+v", warm)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	lead := domain.Draft{
		Origin:   domain.OriginSocial,
		Company:  "Acme",
		Metadata: map[string]any{"budget": float64(6000), "urgency": "high"},
	}
	first, second := Score(lead), Score(lead)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}
