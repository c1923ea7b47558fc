package guard

import "testing"

func TestExtractEntitiesPartAndModel(t *testing.T) {
	ent := ExtractEntities("Does PS11752778 fit my WDT780SAEM1?")
	if ent.Part != "PS11752778" {
		t.Fatalf("part = %q", ent.Part)
	}
	if ent.Model != "WDT780SAEM1" {
		t.Fatalf("model = %q", ent.Model)
	}
}

func TestExtractEntitiesLongestModelWins(t *testing.T) {
	// two model-like tokens; the longer one that is not the part wins
	ent := ExtractEntities("models ABC123 and ABCD1234X here with part PS11752778")
	if ent.Model != "ABCD1234X" {
		t.Fatalf("expected longest non-part token, got %q", ent.Model)
	}
	if ent.Part != "PS11752778" {
		t.Fatalf("part = %q", ent.Part)
	}
}

func TestExtractEntitiesModelNeverEqualsPart(t *testing.T) {
	ent := ExtractEntities("need ps11752778")
	if ent.Part != "PS11752778" {
		t.Fatalf("part = %q", ent.Part)
	}
	if ent.Model == "PS11752778" {
		t.Fatal("model must not duplicate the part")
	}
}

func TestExtractEntitiesNothingMatches(t *testing.T) {
	ent := ExtractEntities("hello there")
	if ent.Part != "" || ent.Model != "" {
		t.Fatalf("expected empty entities, got %+v", ent)
	}
}

func TestClassifyIntentCascadeOrder(t *testing.T) {
	cases := []struct {
		query    string
		wantType string
		wantConf float64
	}{
		{"is PS123 compatible with my model", IntentCompatibility, 0.95},
		// "fit" outranks the installation cue "install"
		{"will this fit after I install it", IntentCompatibility, 0.95},
		{"how to install the pump", IntentInstallation, 0.9},
		{"my dishwasher is leaking", IntentSymptom, 0.9},
		{"I need a new thing", IntentPartLookup, 0.8},
		{"the gasket looks worn", IntentPartLookup, 0.8}, // part-name token
		{"hello", IntentGeneralHelp, 0.7},
	}
	for _, tc := range cases {
		got := ClassifyIntent(tc.query)
		if got.Type != tc.wantType || got.Confidence != tc.wantConf {
			t.Fatalf("ClassifyIntent(%q) = %+v, want %s/%.2f", tc.query, got, tc.wantType, tc.wantConf)
		}
	}
}

func TestOtherApplianceHint(t *testing.T) {
	if got := OtherApplianceHint("my fridge is warm", ApplianceDishwasher); got != ApplianceRefrigerator {
		t.Fatalf("got %q", got)
	}
	if got := OtherApplianceHint("my fridge is warm", ApplianceRefrigerator); got != "" {
		t.Fatalf("same-context mention should yield no hint, got %q", got)
	}
	if got := OtherApplianceHint("dish washer rack", ApplianceRefrigerator); got != ApplianceDishwasher {
		t.Fatalf("got %q", got)
	}
	if got := OtherApplianceHint("nothing relevant", ApplianceDishwasher); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestDecideSwitch(t *testing.T) {
	out, kind := DecideSwitch("fridge filter", ApplianceDishwasher, "")
	if out != SwitchSuggest || kind != ApplianceRefrigerator {
		t.Fatalf("got %v/%q", out, kind)
	}

	out, kind = DecideSwitch("fridge filter", ApplianceDishwasher, ApplianceRefrigerator)
	if out != SwitchProceedSilently || kind != ApplianceRefrigerator {
		t.Fatalf("got %v/%q", out, kind)
	}

	out, _ = DecideSwitch("rack is loose", ApplianceDishwasher, "")
	if out != SwitchNone {
		t.Fatalf("got %v", out)
	}
}

func TestIsRefusalMarker(t *testing.T) {
	if !IsRefusalMarker("User Refused Switch (stay here)") {
		t.Fatal("marker not detected")
	}
	if IsRefusalMarker("please switch to refrigerator") {
		t.Fatal("false positive")
	}
}

func TestScope(t *testing.T) {
	s := NewScope(map[string]struct{}{"ps11752778": {}})

	if !s.InScope("my rack broke", ApplianceDishwasher) {
		t.Fatal("context keyword should be in scope")
	}
	if !s.InScope("ps11752778 please", ApplianceDishwasher) {
		t.Fatal("catalog-derived keyword should be in scope")
	}
	if s.InScope("my car makes a noise", ApplianceDishwasher) {
		t.Fatal("out-of-scope keyword should win")
	}
	if s.InScope("what is the weather", ApplianceDishwasher) {
		t.Fatal("unrelated query should be out of scope")
	}
}

func TestClarifierDefault(t *testing.T) {
	if Clarifier("unknown") != clarifiers[IntentGeneralHelp] {
		t.Fatal("unknown intent should get the general-help clarifier")
	}
}
