package protocol

import "errors"

var (
	ErrNotASCII       = errors.New("datagram is not ASCII text")
	ErrInvalidFormat  = errors.New("invalid message format")
	ErrInvalidCommand = errors.New("invalid command")
	ErrInvalidPeerID  = errors.New("invalid peer ID")
)
