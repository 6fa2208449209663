package hal

import "testing"

func TestPinString(t *testing.T) {
	for _, tt := range []struct {
		pin  Pin
		want string
	}{
		{0, "P0"},
		{13, "P13"},
		{NoPin, "none"},
	} {
		if got := tt.pin.String(); got != tt.want {
			t.Errorf("Pin(%d).String() = %q, want %q", int(tt.pin), got, tt.want)
		}
	}
}
