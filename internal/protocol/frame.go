// Package protocol implements the GoCube BLE wire format: framed
// notifications from the cube and single-byte commands to it.
package protocol

import (
	"errors"
	"fmt"
)

// GoCube BLE service and characteristic UUIDs (Nordic UART layout).
const (
	ServiceUUID = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	RxCharUUID  = "6e400002-b5a3-f393-e0a9-e50e24dcca9e" // write
	TxCharUUID  = "6e400003-b5a3-f393-e0a9-e50e24dcca9e" // notify
)

// Message types sent by the cube.
const (
	MsgTypeRotation     byte = 0x01
	MsgTypeState        byte = 0x02
	MsgTypeOrientation  byte = 0x03
	MsgTypeBattery      byte = 0x05
	MsgTypeOfflineStats byte = 0x07
	MsgTypeCubeType     byte = 0x08
)

// Commands written to the RX characteristic.
const (
	CmdRequestBattery       byte = 0x32
	CmdRequestState         byte = 0x33
	CmdReboot               byte = 0x34
	CmdResetSolved          byte = 0x35
	CmdDisableOrientation   byte = 0x37
	CmdEnableOrientation    byte = 0x38
	CmdRequestOfflineStats  byte = 0x39
	CmdFlashBacklight       byte = 0x41
	CmdToggleAnimatedBL     byte = 0x42
	CmdSlowFlashBacklight   byte = 0x43
	CmdToggleBacklight      byte = 0x44
	CmdRequestCubeType      byte = 0x56
	CmdCalibrateOrientation byte = 0x57
)

const (
	framePrefix byte = '*'
	frameCR     byte = '\r'
	frameLF     byte = '\n'

	// type, checksum and CRLF
	minFrameBody = 4
)

// Errors returned by Parse.
var (
	ErrShortFrame      = errors.New("protocol: frame too short")
	ErrInvalidPrefix   = errors.New("protocol: invalid frame prefix")
	ErrInvalidSuffix   = errors.New("protocol: invalid frame suffix")
	ErrInvalidChecksum = errors.New("protocol: invalid checksum")
)

// Message is one parsed notification.
type Message struct {
	Type    byte
	Payload []byte
}

// TypeName returns a readable name for the message type.
func (m *Message) TypeName() string {
	return MessageTypeName(m.Type)
}

// Parse decodes one frame:
//
//	'*' len type payload... checksum '\r' '\n'
//
// len counts every byte after itself. The checksum is the byte sum of
// everything before it.
func Parse(data []byte) (*Message, error) {
	if len(data) < 2 {
		return nil, ErrShortFrame
	}
	if data[0] != framePrefix {
		return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidPrefix, data[0])
	}

	body := int(data[1])
	if body < minFrameBody {
		return nil, fmt.Errorf("%w: declared body %d", ErrShortFrame, body)
	}
	total := 2 + body
	if len(data) < total {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortFrame, total, len(data))
	}
	frame := data[:total]

	if frame[total-2] != frameCR || frame[total-1] != frameLF {
		return nil, ErrInvalidSuffix
	}

	sumAt := total - 3
	if want := checksum(frame[:sumAt]); frame[sumAt] != want {
		return nil, fmt.Errorf("%w: frame has 0x%02X, computed 0x%02X", ErrInvalidChecksum, frame[sumAt], want)
	}

	payload := make([]byte, sumAt-3)
	copy(payload, frame[3:sumAt])
	return &Message{Type: frame[2], Payload: payload}, nil
}

// Encode frames a message of the given type. Used to synthesize
// notifications in tests and replays.
func Encode(msgType byte, payload []byte) []byte {
	out := make([]byte, 0, len(payload)+6)
	out = append(out, framePrefix, byte(len(payload)+minFrameBody), msgType)
	out = append(out, payload...)
	out = append(out, checksum(out), frameCR, frameLF)
	return out
}

// BuildCommand frames a single command byte for the RX characteristic.
// Commands use a length byte of 1 rather than the notification layout.
func BuildCommand(cmd byte) []byte {
	head := []byte{framePrefix, 0x01, cmd}
	return append(head, checksum(head), frameCR, frameLF)
}

func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}

// MessageTypeName returns a readable name for a message type.
func MessageTypeName(t byte) string {
	switch t {
	case MsgTypeRotation:
		return "rotation"
	case MsgTypeState:
		return "state"
	case MsgTypeOrientation:
		return "orientation"
	case MsgTypeBattery:
		return "battery"
	case MsgTypeOfflineStats:
		return "offline_stats"
	case MsgTypeCubeType:
		return "cube_type"
	default:
		return fmt.Sprintf("unknown_0x%02X", t)
	}
}
