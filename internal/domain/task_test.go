package domain

import "testing"

func TestTaskIDValidate(t *testing.T) {
	valid := TaskID("openml_cc18/abalone")
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	cases := []TaskID{"", "abalone", "a/b/c", "/abalone", "openml_cc18/"}
	for _, id := range cases {
		if err := id.Validate(); err == nil {
			t.Fatalf("Validate(%q) expected error", id)
		}
	}
}

func TestTaskIDSuite(t *testing.T) {
	if got := TaskID("openml_cc18/abalone").Suite(); got != "openml_cc18" {
		t.Fatalf("Suite()=%q, want openml_cc18", got)
	}
}

func TestSweepPointJobNameVerbatim(t *testing.T) {
	p := SweepPoint{Task: "openml_cc18/abalone", Strategy: "rices"}
	if got := p.JobName(); got != "openml_cc18/abalone" {
		t.Fatalf("JobName()=%q, want openml_cc18/abalone", got)
	}
}
