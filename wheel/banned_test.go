package wheel

import "testing"

func TestIsBanned(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"listed lowercase", "0xc86b7b4a1e31ab7854b08539c5f006f5c266d1f1", true},
		{"listed mixed case", "0x760721192290Ee4c22f70AEd5553EbedEb8B8593", true},
		{"listed uppercased", "0X669C4A3D5673AB1C7FE0411BC7FBD122327C5394", true},
		{"unlisted", "0x0000000000000000000000000000000000000001", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBanned(tt.address); got != tt.want {
				t.Errorf("IsBanned(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}
