package bac

import (
	"testing"
)

func TestParseWeight(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"70", 70},
		{"+65", 65},
		{"-3", -3},
		{"", 0},
		{"abc", 0},
		{"70kg", 0},
		{"72.5", 0},
		{" 82 ", 0},
		{"82\n", 0},
		{"99999999999", 0},
		{"this is not a number at all, typed at length", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ParseWeight(tt.text); got != tt.expected {
				t.Errorf("ParseWeight(%q): expected %d, got %d", tt.text, tt.expected, got)
			}
		})
	}
}

func TestParseSelections(t *testing.T) {
	if got := ParseBottles("4"); got != 4 {
		t.Errorf("expected 4 bottles, got %d", got)
	}
	if got := ParseBottles("x"); got != 0 {
		t.Errorf("expected bottles fallback 0, got %d", got)
	}
	if got := ParseHours("12"); got != 12 {
		t.Errorf("expected 12 hours, got %d", got)
	}
	if got := ParseHours(""); got != 1 {
		t.Errorf("expected hours fallback 1, got %d", got)
	}
}

func TestParseSex(t *testing.T) {
	tests := []struct {
		input    string
		expected Sex
		wantErr  bool
	}{
		{"Female", Female, false},
		{"m", Male, false},
		{"other", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sex, err := ParseSex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sex != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, sex)
			}
		})
	}
}

func TestChoices(t *testing.T) {
	bottles := BottleChoices()
	if len(bottles) != 11 || bottles[0] != 0 || bottles[10] != 10 {
		t.Errorf("unexpected bottle choices: %v", bottles)
	}

	hours := HourChoices()
	if len(hours) != 24 || hours[0] != 1 || hours[23] != 24 {
		t.Errorf("unexpected hour choices: %v", hours)
	}
}

func TestForm_Validate(t *testing.T) {
	if err := DefaultForm().Validate(); err != nil {
		t.Errorf("expected default form to be valid: %v", err)
	}

	valid := []Form{
		{WeightText: "not a number", Sex: Female, Bottles: 10, Hours: 24},
		{WeightText: "this is not a number at all, typed at length", Sex: Male, Bottles: 1, Hours: 1},
	}
	for _, f := range valid {
		if err := f.Validate(); err != nil {
			t.Errorf("expected %+v to be valid: %v", f, err)
		}
	}

	invalid := []Form{
		{Sex: Male, Bottles: 11, Hours: 1},
		{Sex: Male, Bottles: -1, Hours: 1},
		{Sex: Male, Bottles: 0, Hours: 0},
		{Sex: Male, Bottles: 0, Hours: 25},
		{Sex: "other", Bottles: 0, Hours: 1},
		{Sex: "", Bottles: 0, Hours: 1},
	}
	for _, f := range invalid {
		if err := f.Validate(); err == nil {
			t.Errorf("expected error for %+v", f)
		}
	}
}

func TestForm_Input(t *testing.T) {
	in := Form{WeightText: "80", Sex: Male, Bottles: 4, Hours: 2}.Input()
	expected := Input{Sex: Male, WeightKg: 80, DrinkCount: 4, ElapsedHours: 2}
	if in != expected {
		t.Errorf("expected %+v, got %+v", expected, in)
	}

	// unparseable weight of any length reaches the estimator as zero
	for _, text := range []string{"eighty", "this is not a number at all, typed at length"} {
		in = Form{WeightText: text, Sex: Male, Bottles: 1, Hours: 1}.Input()
		if in.WeightKg != 0 {
			t.Errorf("%q: expected weight 0, got %d", text, in.WeightKg)
		}
		if got := Estimate(in).Outcome(); got != OutcomePosInfinity {
			t.Errorf("%q: expected %s, got %s", text, OutcomePosInfinity, got)
		}
	}
}
