// Package protocol encodes and decodes the hub's datagrams.
//
// Peers talk to the hub with two-token ASCII control messages, one per datagram:
//
//	R <peer_id>    register the sender's address under peer_id
//	U <peer_id>    remove peer_id
//
// The hub talks back only with broadcasts of the form "SERVER_MESSAGE: <timestamp>". Nothing is ever
// acknowledged; a peer learns that its registration worked when broadcasts start arriving.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/puizinam/go-udp-hub/internal/registry"
)

// Command is the first token of a control message.
type Command string

const (
	CommandRegister   Command = "R"
	CommandUnregister Command = "U"
)

const BroadcastPrefix = "SERVER_MESSAGE: "

// Date, time and six fractional digits of the second.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Control is a decoded control message.
type Control struct {
	Command Command
	PeerID  registry.PeerID
}

func Register(id registry.PeerID) Control {
	return Control{Command: CommandRegister, PeerID: id}
}

func Unregister(id registry.PeerID) Control {
	return Control{Command: CommandUnregister, PeerID: id}
}

func (c Control) String() string {
	return fmt.Sprintf("%s %d", c.Command, c.PeerID)
}

func (c Control) Bytes() []byte {
	return []byte(c.String())
}

// This function decodes a control message. The payload must be ASCII and split into exactly two
// whitespace-separated tokens: a command (case-insensitive R or U) and a decimal peer ID. Any other
// input yields an error wrapping one of the package's sentinel errors.
func ParseControl(data []byte) (Control, error) {
	if !isASCII(data) {
		return Control{}, ErrNotASCII
	}
	message := strings.TrimSpace(string(data))
	tokens := strings.Fields(message)
	if len(tokens) != 2 {
		return Control{}, fmt.Errorf("%w: %q", ErrInvalidFormat, message)
	}
	command := Command(strings.ToUpper(tokens[0]))
	if command != CommandRegister && command != CommandUnregister {
		return Control{}, fmt.Errorf("%w: %q", ErrInvalidCommand, tokens[0])
	}
	id, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil {
		return Control{}, fmt.Errorf("%w: %q", ErrInvalidPeerID, tokens[1])
	}
	return Control{Command: command, PeerID: registry.PeerID(id)}, nil
}

// BroadcastPayload builds the message the hub sends to every registered peer.
func BroadcastPayload(now time.Time) []byte {
	return []byte(BroadcastPrefix + now.Format(TimestampLayout))
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
