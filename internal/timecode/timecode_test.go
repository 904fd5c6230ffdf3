package timecode

import "testing"

func TestParseMillis(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"00:00:00,000", 0},
		{"00:00:01,500", 1500},
		{"00:01:02,345", 62345},
		{"01:00:00,001", 3600001},
		{"00:00:01.500", 1500},
		{"  00:00:02,000  ", 2000},
	}
	for _, tc := range cases {
		got, err := ParseMillis(tc.input)
		if err != nil {
			t.Fatalf("ParseMillis(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMillis(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseMillisInvalid(t *testing.T) {
	for _, input := range []string{"", "1:2", "00:00:00", "aa:bb:cc,ddd", "00:00,000"} {
		if _, err := ParseMillis(input); err == nil {
			t.Fatalf("ParseMillis(%q): expected error", input)
		}
	}
}

func TestFormatMillis(t *testing.T) {
	cases := []struct {
		input int64
		want  string
	}{
		{0, "00:00:00,000"},
		{1500, "00:00:01,500"},
		{62345, "00:01:02,345"},
		{3600001, "01:00:00,001"},
		{-250, "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := FormatMillis(tc.input); got != tc.want {
			t.Fatalf("FormatMillis(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, ms := range []int64{0, 1, 999, 1000, 61001, 3723456} {
		parsed, err := ParseMillis(FormatMillis(ms))
		if err != nil {
			t.Fatalf("round trip %d: %v", ms, err)
		}
		if parsed != ms {
			t.Fatalf("round trip %d: got %d", ms, parsed)
		}
	}
}

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange("00:00:00,500 --> 00:00:02.250")
	if err != nil {
		t.Fatal(err)
	}
	if start != 500 || end != 2250 {
		t.Fatalf("got (%d, %d), want (500, 2250)", start, end)
	}

	if _, _, err := ParseRange("00:00:00,500"); err == nil {
		t.Fatal("expected error for missing arrow")
	}
}
