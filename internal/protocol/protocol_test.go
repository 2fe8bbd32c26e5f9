package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubeanim/internal/notation"
)

func TestBuildCommand(t *testing.T) {
	assert.Equal(t, []byte{0x2A, 0x01, 0x32, 0x5D, 0x0D, 0x0A}, BuildCommand(CmdRequestBattery))
}

func TestEncodeParse(t *testing.T) {
	frame := Encode(MsgTypeRotation, []byte{0x04, 0x00, 0x09, 0x03})
	assert.Equal(t, byte(len(frame)-2), frame[1])

	msg, err := Parse(frame)
	require.NoError(t, err)
	assert.Equal(t, MsgTypeRotation, msg.Type)
	assert.Equal(t, []byte{0x04, 0x00, 0x09, 0x03}, msg.Payload)
	assert.Equal(t, "rotation", msg.TypeName())

	// trailing bytes after the declared frame are ignored
	msg, err = Parse(append(frame, 0xFF))
	require.NoError(t, err)
	assert.Len(t, msg.Payload, 4)
}

func TestParse_Errors(t *testing.T) {
	good := Encode(MsgTypeBattery, []byte{80})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrShortFrame},
		{"prefix", append([]byte{'#'}, good[1:]...), ErrInvalidPrefix},
		{"truncated", good[:len(good)-1], ErrShortFrame},
		{"tiny body", []byte{'*', 0x02, 0x05, 0x00}, ErrShortFrame},
	}

	badSum := append([]byte(nil), good...)
	badSum[len(badSum)-3]++
	tests = append(tests, struct {
		name string
		data []byte
		want error
	}{"checksum", badSum, ErrInvalidChecksum})

	badSuffix := append([]byte(nil), good...)
	badSuffix[len(badSuffix)-1] = 0
	tests = append(tests, struct {
		name string
		data []byte
		want error
	}{"suffix", badSuffix, ErrInvalidSuffix})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeRotation(t *testing.T) {
	rots, err := DecodeRotation([]byte{0x04, 0x00, 0x09, 0x03})
	require.NoError(t, err)
	require.Len(t, rots, 2)

	assert.Equal(t, Rotation{Code: 0x04, Center: 0x00, Clockwise: true, Color: "white"}, rots[0])
	assert.Equal(t, Rotation{Code: 0x09, Center: 0x03, Clockwise: false, Color: "red"}, rots[1])

	_, err = DecodeRotation([]byte{0x04})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeRotation([]byte{0x0C, 0x00})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestRotationMoves_MapsToEngineConvention(t *testing.T) {
	// white cw, yellow cw, red ccw, orange cw, green cw, blue ccw
	payload := []byte{0x04, 0, 0x06, 0, 0x09, 0, 0x0A, 0, 0x02, 0, 0x01, 0}
	moves, err := RotationMoves(&Message{Type: MsgTypeRotation, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, "U' D R L F' B'", notation.Format(moves))

	_, err = RotationMoves(&Message{Type: MsgTypeBattery, Payload: []byte{1}})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodeBatteryAndType(t *testing.T) {
	level, err := DecodeBattery([]byte{87})
	require.NoError(t, err)
	assert.Equal(t, 87, level)

	_, err = DecodeBattery(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	kind, err := DecodeCubeType([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, "edge", kind)

	kind, err = DecodeCubeType([]byte{0x00})
	require.NoError(t, err)
	assert.Equal(t, "standard", kind)
}

func TestDecodeOrientation(t *testing.T) {
	o, err := DecodeOrientation([]byte("0#0#0#1000\x12"))
	require.NoError(t, err)
	assert.Equal(t, "U", o.Up)
	assert.Equal(t, "F", o.Front)
	assert.InDelta(t, 1.0, o.Quat.W, 1e-12)

	// quarter turn about +x tips the up face toward the viewer
	o, err = DecodeOrientation([]byte("707#0#0#707"))
	require.NoError(t, err)
	assert.Equal(t, "F", o.Up)
	assert.Equal(t, "D", o.Front)

	_, err = DecodeOrientation([]byte("1#2#3"))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeOrientation([]byte("0#0#0#0"))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodeOfflineStats(t *testing.T) {
	s, err := DecodeOfflineStats([]byte("120#300#2"))
	require.NoError(t, err)
	assert.Equal(t, OfflineStats{Moves: 120, Seconds: 300, Solves: 2}, s)

	_, err = DecodeOfflineStats([]byte("x#1#2"))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
