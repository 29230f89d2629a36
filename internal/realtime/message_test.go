package realtime

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name      string
		frame     string
		wantEvent string
		wantData  string
		wantErr   bool
	}{
		{name: "object", frame: `{"event":"newEvent","data":{"id":1}}`, wantEvent: "newEvent", wantData: `{"id":1}`},
		{name: "array", frame: ` ["updatedEvent",{"title":"x"}] `, wantEvent: "updatedEvent", wantData: `{"title":"x"}`},
		{name: "array without data", frame: `["event-reminder"]`, wantEvent: "event-reminder"},
		{name: "empty", frame: ``, wantErr: true},
		{name: "empty array", frame: `[]`, wantErr: true},
		{name: "no event name", frame: `{"data":1}`, wantErr: true},
		{name: "non string name", frame: `[1,2]`, wantErr: true},
		{name: "scalar", frame: `"newEvent"`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Decode([]byte(tc.frame))
			if tc.wantErr {
				if !errors.Is(err, ErrBadFrame) {
					t.Fatalf("expected ErrBadFrame, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if m.Event != tc.wantEvent || string(m.Data) != tc.wantData {
				t.Fatalf("got %q %s", m.Event, m.Data)
			}
		})
	}
}

func TestEncodeRoundTripsThroughDecode(t *testing.T) {
	b, err := Encode(EventReminder, map[string]string{"message": "soon"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m, err := Decode(b)
	if err != nil || m.Event != EventReminder || string(m.Data) != `{"message":"soon"}` {
		t.Fatalf("unexpected %+v %v", m, err)
	}
}
