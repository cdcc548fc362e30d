//go:build go1.18

package cpf

import "testing"

// FuzzValidate verifies that validation never panics on arbitrary input and
// that accepted input always survives the normalize/format round trip.
func FuzzValidate(f *testing.F) {
	f.Add("")
	f.Add("529.982.247-25")
	f.Add("11111111111")
	f.Add("'; DROP TABLE units;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("529.982.247-25\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		ok := Validate(input)

		digits := Normalize(input)
		for _, r := range digits {
			if r < '0' || r > '9' {
				t.Fatalf("Normalize(%q) produced non-digit %q", input, r)
			}
		}

		if ok {
			if len(digits) != Length {
				t.Errorf("accepted input normalized to %d digits", len(digits))
			}
			// Formatting valid digits must be reversible.
			if Normalize(Format(digits)) != digits {
				t.Errorf("Format round-trip changed digits for %q", input)
			}
			if !Validate(Format(digits)) {
				t.Errorf("formatted form of accepted input was rejected")
			}
		}
	})
}
