package model

import "testing"

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "comma decimal", input: "25,50", want: 25.5},
		{name: "dot decimal", input: "25.50", want: 25.5},
		{name: "integer", input: "100", want: 100},
		{name: "embedded spaces", input: "1 250,00", want: 1250},
		{name: "negative rejected", input: "-5", wantErr: true},
		{name: "zero rejected", input: "0", wantErr: true},
		{name: "non numeric rejected", input: "abc", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "infinity rejected", input: "Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMoney(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMoney(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMoney(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: `"Padaria Central"`, want: "Padaria Central"},
		{input: "'Pix'", want: "Pix"},
		{input: "  Mercado  ", want: "Mercado"},
		{input: `""`, want: ""},
	}

	for _, tt := range tests {
		if got := StripQuotes(tt.input); got != tt.want {
			t.Errorf("StripQuotes(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
