package learning

import "testing"

func TestGradeProductionNormalizes(t *testing.T) {
	cases := []struct {
		submitted string
		want      bool
	}{
		{"Hola", true},
		{" hola ", true},
		{"HOLA", true},
		{"hola", true},
		{"Hol", false},
		{"", false},
		{"holaa", false},
	}
	for _, c := range cases {
		if got := GradeProduction("hola", c.submitted); got != c.want {
			t.Errorf("GradeProduction(%q) = %v, want %v", c.submitted, got, c.want)
		}
	}
}

func TestGradeProductionExactAfterNormalize(t *testing.T) {
	// No accent folding: the normalized strings must match byte for byte.
	if GradeProduction("plátano", "platano") {
		t.Error("expected accented answer to reject unaccented submission")
	}
	if !GradeProduction("Plátano", "plátano") {
		t.Error("expected case-insensitive match for accented answer")
	}
}

func TestGradeRecognition(t *testing.T) {
	ch := &Challenge{ItemID: 7, Kind: Recognition}
	if !GradeRecognition(ch, 7) {
		t.Error("expected matching option id to grade correct")
	}
	if GradeRecognition(ch, 8) {
		t.Error("expected mismatching option id to grade incorrect")
	}
}
