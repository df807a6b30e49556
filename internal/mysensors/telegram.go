package mysensors

import (
	"strconv"
	"strings"
)

// Wire format constants.
const (
	// FieldSeparator separates the six telegram fields.
	FieldSeparator = ";"

	// LineDelimiter terminates every telegram on the wire.
	LineDelimiter = "\n"

	// telegramFields is the number of fields in every telegram.
	telegramFields = 6

	// NodeLevelChild is the child id used for messages addressed to the
	// node itself rather than one of its sensors.
	NodeLevelChild = 255

	// GatewayNode is the node id of the gateway.
	GatewayNode = 0
)

// Telegram is one MySensors protocol message.
//
// The subtype field is kept raw because its meaning depends on Type: use
// SensorType, ValueType or InternalType to interpret it.
type Telegram struct {
	// Node is the sending (inbound) or destination (outbound) node id.
	Node int

	// Child is the sensor id within the node, or NodeLevelChild.
	Child int

	// Type selects the interpretation of SubType and Payload.
	Type MessageType

	// Ack is non-zero when the telegram is an acknowledgement (inbound)
	// or requests one (outbound).
	Ack uint8

	// SubType is the raw subtype code.
	SubType uint8

	// Payload is the free-text value. It must not contain LineDelimiter.
	Payload string
}

// ParseTelegram parses one line received from the gateway.
//
// Surrounding whitespace, including the line delimiter, is ignored. The line
// must contain exactly six fields and the first five must be decimal
// integers in 0..255. The payload is kept verbatim and may contain spaces.
//
// Returns:
//   - Telegram: Parsed telegram
//   - error: *MalformedTelegramError (matches ErrMalformedTelegram)
func ParseTelegram(line string) (Telegram, error) {
	trimmed := strings.TrimSpace(line)

	fields := strings.Split(trimmed, FieldSeparator)
	if len(fields) != telegramFields {
		return Telegram{}, &MalformedTelegramError{
			Line:   trimmed,
			Reason: "expected 6 fields, got " + strconv.Itoa(len(fields)),
		}
	}

	var nums [telegramFields - 1]uint8
	for i := range nums {
		v, err := strconv.ParseUint(fields[i], 10, 8)
		if err != nil {
			return Telegram{}, &MalformedTelegramError{
				Line:   trimmed,
				Reason: "field " + strconv.Itoa(i+1) + " is not a valid integer: " + strconv.Quote(fields[i]),
			}
		}
		nums[i] = uint8(v)
	}

	return Telegram{
		Node:    int(nums[0]),
		Child:   int(nums[1]),
		Type:    MessageType(nums[2]),
		Ack:     nums[3],
		SubType: nums[4],
		Payload: fields[5],
	}, nil
}

// String returns the telegram in wire format without the line delimiter.
func (t Telegram) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(t.Node))
	b.WriteString(FieldSeparator)
	b.WriteString(strconv.Itoa(t.Child))
	b.WriteString(FieldSeparator)
	b.WriteString(strconv.Itoa(int(t.Type)))
	b.WriteString(FieldSeparator)
	b.WriteString(strconv.Itoa(int(t.Ack)))
	b.WriteString(FieldSeparator)
	b.WriteString(strconv.Itoa(int(t.SubType)))
	b.WriteString(FieldSeparator)
	b.WriteString(t.Payload)
	return b.String()
}

// Encode returns the telegram in wire format, terminated by LineDelimiter.
func (t Telegram) Encode() string {
	return t.String() + LineDelimiter
}

// IsAck reports whether the inbound telegram is an acknowledgement.
func (t Telegram) IsAck() bool {
	return t.Ack != 0
}

// SensorType interprets the subtype of a PRESENTATION telegram.
func (t Telegram) SensorType() SensorType {
	return SensorType(t.SubType)
}

// ValueType interprets the subtype of a SET or REQ telegram.
func (t Telegram) ValueType() ValueType {
	return ValueType(t.SubType)
}

// InternalType interprets the subtype of an INTERNAL telegram.
func (t Telegram) InternalType() InternalType {
	return InternalType(t.SubType)
}

// NewSetTelegram creates a SET telegram for a child.
func NewSetTelegram(node, child int, value ValueType, ack bool, payload string) Telegram {
	t := Telegram{
		Node:    node,
		Child:   child,
		Type:    Set,
		SubType: uint8(value),
		Payload: payload,
	}
	if ack {
		t.Ack = 1
	}
	return t
}

// NewInternalTelegram creates an INTERNAL telegram.
func NewInternalTelegram(node, child int, subtype InternalType, payload string) Telegram {
	return Telegram{
		Node:    node,
		Child:   child,
		Type:    Internal,
		SubType: uint8(subtype),
		Payload: payload,
	}
}
