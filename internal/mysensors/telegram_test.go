package mysensors

import (
	"errors"
	"testing"
)

func TestParseTelegram(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Telegram
		wantErr bool
	}{
		{
			name: "set temperature",
			line: "12;3;1;0;0;45",
			want: Telegram{Node: 12, Child: 3, Type: Set, SubType: uint8(ValueTemp), Payload: "45"},
		},
		{
			name: "presentation with trailing newline",
			line: "5;1;0;0;6;1.5.4\n",
			want: Telegram{Node: 5, Child: 1, Type: Presentation, SubType: uint8(SensorTemp), Payload: "1.5.4"},
		},
		{
			name: "internal id request with CRLF",
			line: "255;255;3;0;3;\r\n",
			want: Telegram{Node: 255, Child: 255, Type: Internal, SubType: uint8(InternalIDRequest)},
		},
		{
			name: "ack flag set",
			line: "7;2;1;1;2;1",
			want: Telegram{Node: 7, Child: 2, Type: Set, Ack: 1, SubType: uint8(ValueLight), Payload: "1"},
		},
		{
			name: "payload with spaces",
			line: "0;0;3;0;9;read: 1-1-0 s=1,c=1",
			want: Telegram{Node: 0, Child: 0, Type: Internal, SubType: uint8(InternalLogMessage), Payload: "read: 1-1-0 s=1,c=1"},
		},
		{
			name:    "too few fields",
			line:    "1;2;3",
			wantErr: true,
		},
		{
			name:    "too many fields",
			line:    "1;2;3;0;0;1;2",
			wantErr: true,
		},
		{
			name:    "non numeric node",
			line:    "a;2;1;0;0;1",
			wantErr: true,
		},
		{
			name:    "negative child",
			line:    "1;-2;1;0;0;1",
			wantErr: true,
		},
		{
			name:    "node out of range",
			line:    "256;1;1;0;0;1",
			wantErr: true,
		},
		{
			name:    "empty line",
			line:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTelegram(tt.line)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTelegram(%q) expected error, got %+v", tt.line, got)
				}
				if !errors.Is(err, ErrMalformedTelegram) {
					t.Errorf("ParseTelegram() error = %v, want ErrMalformedTelegram", err)
				}
				var malformed *MalformedTelegramError
				if !errors.As(err, &malformed) {
					t.Errorf("ParseTelegram() error type = %T, want *MalformedTelegramError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseTelegram(%q) unexpected error: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseTelegram(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestTelegramRoundTrip(t *testing.T) {
	lines := []string{
		"12;3;1;0;0;45",
		"0;0;3;0;14;Gateway startup complete.",
		"255;255;3;0;3;",
		"4;1;2;0;3;",
		"9;0;0;0;8;2.0.0",
		"254;255;3;1;11;Weather Station",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			parsed, err := ParseTelegram(line)
			if err != nil {
				t.Fatalf("ParseTelegram() error = %v", err)
			}

			if got := parsed.Encode(); got != line+LineDelimiter {
				t.Errorf("Encode() = %q, want %q", got, line+LineDelimiter)
			}
			if got := parsed.String(); got != line {
				t.Errorf("String() = %q, want %q", got, line)
			}
		})
	}
}

func TestNewSetTelegram(t *testing.T) {
	got := NewSetTelegram(4, 2, ValueDimmer, true, "100")
	if got.Encode() != "4;2;1;1;3;100\n" {
		t.Errorf("Encode() = %q, want %q", got.Encode(), "4;2;1;1;3;100\n")
	}

	got = NewSetTelegram(4, 2, ValueTemp, false, "21.5")
	if got.Ack != 0 {
		t.Errorf("Ack = %d, want 0", got.Ack)
	}
}

func TestNewInternalTelegram(t *testing.T) {
	got := NewInternalTelegram(255, 255, InternalIDResponse, "7")
	if got.String() != "255;255;3;0;4;7" {
		t.Errorf("String() = %q, want %q", got.String(), "255;255;3;0;4;7")
	}
}

func TestTelegramSubtypeAccessors(t *testing.T) {
	tel := Telegram{Type: Presentation, SubType: 8}
	if tel.SensorType() != SensorBaro {
		t.Errorf("SensorType() = %v, want S_BARO", tel.SensorType())
	}
	if tel.ValueType() != ValuePressure {
		t.Errorf("ValueType() = %v, want V_PRESSURE", tel.ValueType())
	}
	if tel.InternalType() != InternalFindParentResponse {
		t.Errorf("InternalType() = %v, want I_FIND_PARENT_RESPONSE", tel.InternalType())
	}
}
