package ecms

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/carbocation/ecms/measurement"
	"github.com/carbocation/ecms/series"
)

func TestParseSpan(t *testing.T) {
	cases := []struct {
		Input    string
		Expected series.Span
		Err      bool
	}{
		{"", series.Span{}, false},
		{"10,20", series.Span{10, 20}, false},
		{" 1.5 , 2.5 ", series.Span{1.5, 2.5}, false},
		{"20,10", series.Span{}, true},
		{"10", series.Span{}, true},
		{"a,b", series.Span{}, true},
	}

	for _, c := range cases {
		got, err := ParseSpan(c.Input)
		if c.Err {
			if err == nil {
				t.Fatalf("Expected an error for %q", c.Input)
			}
			continue
		}
		if err != nil {
			t.Fatal(err)
		}
		if got != c.Expected {
			t.Fatalf("Expected %v, got %v", c.Expected, got)
		}
	}
}

func TestLoadECMS(t *testing.T) {
	dir := t.TempDir()
	ecPath := filepath.Join(dir, "ec.csv")
	msPath := filepath.Join(dir, "ms.tsv")

	ecData := "time/s,raw potential / [V],raw current / [mA]\n" +
		"0,0.5,2\n1,0.5,2\n2,0.5,2\n3,0.5,2\n"
	msData := "time/s\tM32\n" +
		"0\t1e-10\n1\t1e-10\n2\t1e-10\n3\t1e-10\n4\t1e-10\n"
	if err := os.WriteFile(ecPath, []byte(ecData), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(msPath, []byte(msData), 0644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	ec, err := LoadEC(ctx, ecPath, 1000, nil, measurement.ECConfig{})
	if err != nil {
		t.Fatal(err)
	}
	ms, err := LoadMS(ctx, msPath, 999, nil, measurement.MSConfig{}, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	m := measurement.Merge(ec, ms)
	if m.Tstamp != 999 {
		t.Fatalf("Expected merged tstamp 999, got %f", m.Tstamp)
	}

	Q, err := m.EC.Charge(series.Span{1, 3})
	if err != nil {
		t.Fatal(err)
	}
	if Q < 3.99e-3 || Q > 4.01e-3 {
		t.Fatalf("Expected 4 mC, got %g C", Q)
	}

	// A constant signal is unchanged by smoothing, and vanishes once its
	// own background is removed.
	Y, err := m.IntegrateSignal("M32", series.Span{1, 4}, series.Span{0, 4})
	if err != nil {
		t.Fatal(err)
	}
	if Y > 1e-15 || Y < -1e-15 {
		t.Fatalf("Expected zero background-corrected signal, got %g", Y)
	}
}
