package vision

import (
	"reflect"
	"testing"
)

func TestValidatePlates(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"AB12 CDE", []string{"AB12 CDE"}},
		{"AB1 CDE", nil},
		{"ab12 cde", nil},
		{"ABC12 CDE", nil},
		{"AB12 CD", nil},
		{"GB\nAB12 CDE\nsome noise", []string{"AB12 CDE"}},
		{"AB12 CDE and XY34 FGH", []string{"AB12 CDE", "XY34 FGH"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := ValidatePlates(tt.raw)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ValidatePlates(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestResolveConsensus(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		wantPlate  string
		wantOK     bool
	}{
		{"no candidates", nil, "", false},
		{"single read is not trusted", []string{"AB12 CDE"}, "", false},
		{"two matching reads", []string{"AB12 CDE", "AB12 CDE"}, "AB12 CDE", true},
		{"tie is unknown", []string{"AB12 CDE", "XY34 FGH"}, "", false},
		{"majority wins over a misread", []string{"AB12 CDE", "AB12 CDE", "AB12 CDF"}, "AB12 CDE", true},
		{"tie at top count is unknown",
			[]string{"AB12 CDE", "AB12 CDE", "XY34 FGH", "XY34 FGH"}, "", false},
	}

	for _, tt := range tests {
		plate, ok := ResolveConsensus(tt.candidates)
		if plate != tt.wantPlate || ok != tt.wantOK {
			t.Errorf("%s: ResolveConsensus(%v) = (%q, %v); want (%q, %v)",
				tt.name, tt.candidates, plate, ok, tt.wantPlate, tt.wantOK)
		}
	}
}

func TestResolveConsensusOrderIndependent(t *testing.T) {
	base := []string{"AB12 CDE", "XY34 FGH", "AB12 CDE", "AB12 CDE", "XY34 FGH"}
	permutations := [][]string{
		{"XY34 FGH", "AB12 CDE", "AB12 CDE", "XY34 FGH", "AB12 CDE"},
		{"AB12 CDE", "AB12 CDE", "XY34 FGH", "XY34 FGH", "AB12 CDE"},
		{"XY34 FGH", "XY34 FGH", "AB12 CDE", "AB12 CDE", "AB12 CDE"},
	}

	wantPlate, wantOK := ResolveConsensus(base)
	for i, perm := range permutations {
		plate, ok := ResolveConsensus(perm)
		if plate != wantPlate || ok != wantOK {
			t.Errorf("permutation %d: got (%q, %v); want (%q, %v)", i, plate, ok, wantPlate, wantOK)
		}
	}
}
