package util

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain digits", in: "15035550188", want: "15035550188"},
		{name: "formatted US number", in: "+1 (503) 555-0188", want: "15035550188"},
		{name: "twilio prefix", in: "tel:+15035550188", want: "15035550188"},
		{name: "empty", in: "", wantErr: true},
		{name: "no digits", in: "not-a-number", wantErr: true},
		{name: "too short", in: "12345", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := NormalizePhone(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", c.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
