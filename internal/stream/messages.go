package stream

import (
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/SeamusWaldron/cubeanim"
)

// Message type tags.
const (
	TypeHello    = "hello"
	TypeFrame    = "frame"
	TypeRotation = "rotation"
	TypeAck      = "ack"
	TypeReject   = "reject"
	TypeRotate   = "rotate"
)

// HelloMessage is sent once to every new subscriber.
type HelloMessage struct {
	Type     string `json:"type" jsonschema:"enum=hello"`
	ClientID string `json:"clientId"`
	// Colors lists each cubelet's sticker color names, indexed by cubelet
	// and then by face (U, D, L, R, F, B) in the cubelet's own frame.
	Colors [][6]string `json:"colors"`
	Size   float64     `json:"size"`
	FPS    int         `json:"fps"`
}

// FrameMessage carries the world transforms of all cubelets for one frame.
type FrameMessage struct {
	Type     string               `json:"type" jsonschema:"enum=frame"`
	Frame    uint64               `json:"frame"`
	Time     int64                `json:"time" jsonschema:"description=Server time in Unix milliseconds"`
	Cubelets []cubeanim.Transform `json:"cubelets"`
	Active   *ActiveRotation      `json:"active,omitempty"`
	Pending  int                  `json:"pending"`
	Solved   bool                 `json:"solved"`
}

// ActiveRotation describes the in-flight rotation.
type ActiveRotation struct {
	Move     string  `json:"move"`
	Progress float64 `json:"progress" jsonschema:"minimum=0,maximum=1"`
}

// RotationMessage reports a completed rotation.
type RotationMessage struct {
	Type             string  `json:"type" jsonschema:"enum=rotation"`
	ID               string  `json:"id"`
	Move             string  `json:"move"`
	Frames           int     `json:"frames"`
	PositionDrift    float64 `json:"positionDrift"`
	OrientationDrift float64 `json:"orientationDrift"`
	Error            string  `json:"error,omitempty"`
}

// ClientMessage is the only message clients send.
type ClientMessage struct {
	Type     string `json:"type" jsonschema:"enum=rotate"`
	Notation string `json:"notation" jsonschema:"pattern=^[UDLRFB]'?$"`
}

// AckMessage answers a ClientMessage.
type AckMessage struct {
	Type     string `json:"type" jsonschema:"enum=ack,enum=reject"`
	Notation string `json:"notation"`
	ID       string `json:"id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Schema returns the JSON Schema of every message on the wire.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}

	server := []*jsonschema.Schema{}
	for _, v := range []any{HelloMessage{}, FrameMessage{}, RotationMessage{}, AckMessage{}} {
		s := reflector.ReflectFromType(reflect.TypeOf(v))
		s.Version = ""
		server = append(server, s)
	}

	client := reflector.ReflectFromType(reflect.TypeOf(ClientMessage{}))
	client.Version = ""
	client.Title = "Client Message"

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "cubeanim stream",
		Description: "Messages exchanged over the cubeanim websocket.",
		Definitions: jsonschema.Definitions{
			"server": &jsonschema.Schema{
				Title: "Server Message",
				OneOf: server,
			},
			"client": client,
		},
	}
}
