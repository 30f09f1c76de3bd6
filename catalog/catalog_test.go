package catalog

import "testing"

func TestBuiltinRegistryValidates(t *testing.T) {
	r := Builtin()
	if len(r.Names()) == 0 {
		t.Fatal("builtin registry is empty")
	}
	for _, name := range r.Names() {
		ins, ok := r.Lookup(name)
		if !ok {
			t.Fatalf("name %q listed but not found", name)
		}
		if err := ins.Validate(); err != nil {
			t.Errorf("builtin %q fails validation: %v", name, err)
		}
		if ins.Volume <= 0 {
			t.Errorf("builtin %q has no volume default", name)
		}
	}
}

func TestBuiltinIsSharedInstance(t *testing.T) {
	if Builtin() != Builtin() {
		t.Fatal("Builtin returned distinct registries")
	}
}

func TestCategoryGrouping(t *testing.T) {
	r := Builtin()
	drums := r.Category("drums")
	if len(drums) < 4 {
		t.Fatalf("expected several drum instruments, got %d", len(drums))
	}
	for _, ins := range drums {
		if ins.Category != "drums" {
			t.Errorf("%q grouped under drums but has category %q", ins.Name, ins.Category)
		}
	}
	if got := r.Category("no-such-category"); got != nil {
		t.Errorf("unknown category returned %d instruments", len(got))
	}
}

func TestValidateRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name string
		ins  Instrument
	}{
		{"no name", Instrument{Family: FamilyPitched, Volume: 1}},
		{"negative attack", Instrument{Name: "x", Family: FamilyPitched, Volume: 1,
			Envelope: Envelope{Attack: -0.1}}},
		{"sustain above one", Instrument{Name: "x", Family: FamilyPitched, Volume: 1,
			Envelope: Envelope{Sustain: 1.5}}},
		{"zero cutoff", Instrument{Name: "x", Family: FamilyPitched, Volume: 1,
			Filter: &Filter{Type: FilterLowpass, Cutoff: 0, Q: 1}}},
		{"zero filter q", Instrument{Name: "x", Family: FamilyPitched, Volume: 1,
			Filter: &Filter{Type: FilterLowpass, Cutoff: 1000, Q: 0}}},
		{"mod depth above one", Instrument{Name: "x", Family: FamilyPitched, Volume: 1,
			Mod: &Modulation{Target: ModVibrato, RateHz: 5, Depth: 2}}},
		{"zero mod rate", Instrument{Name: "x", Family: FamilyPitched, Volume: 1,
			Mod: &Modulation{Target: ModVibrato, RateHz: 0, Depth: 0.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.ins.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	defs := []Instrument{
		{Name: "a", Family: FamilyPitched},
		{Name: "a", Family: FamilyNoise},
	}
	if _, err := NewRegistry(defs); err == nil {
		t.Fatal("expected duplicate-name error")
	}
}

func TestFamilyByName(t *testing.T) {
	for f, want := range familyNames {
		got, ok := FamilyByName(want)
		if !ok || got != f {
			t.Errorf("FamilyByName(%q) = %v, %v", want, got, ok)
		}
	}
	if _, ok := FamilyByName("kazoo"); ok {
		t.Error("unknown family name resolved")
	}
}
