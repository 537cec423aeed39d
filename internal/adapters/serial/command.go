package serial

import (
	"fmt"

	"github.com/bnema/haptic-handshake/internal/domain"
)

const (
	CommandMove = 'a'
	CommandStop = 'b'
)

var stopCommand = []byte("b\n")

// EncodeTarget renders an absolute move command: "a,<left>,<right>\n".
func EncodeTarget(target domain.EncoderPair) []byte {
	return fmt.Appendf(nil, "%c,%d,%d\n", CommandMove, target.Left, target.Right)
}

func EncodeStop() []byte {
	out := make([]byte, len(stopCommand))
	copy(out, stopCommand)
	return out
}
