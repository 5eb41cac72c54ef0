package lineserver

import (
	"bufio"
	"errors"
	"io"
)

// ErrLineTooLong is returned when a command line exceeds the configured limit.
var ErrLineTooLong = errors.New("line too long")

// readLine reads one '\n' terminated line from br and strips the terminator
// (and a preceding '\r'). A final line without terminator is returned as is;
// the following call reports io.EOF.
func readLine(br *bufio.Reader, maxLen int) (string, error) {
	var buf []byte
	for {
		frag, err := br.ReadSlice('\n')
		buf = append(buf, frag...)

		switch {
		case err == nil:
			return finishLine(buf, maxLen)
		case errors.Is(err, bufio.ErrBufferFull):
			// Leave room for a pending "\r".
			if len(buf) > maxLen+1 {
				return "", ErrLineTooLong
			}
		case errors.Is(err, io.EOF):
			if len(buf) == 0 {
				return "", io.EOF
			}
			return finishLine(buf, maxLen)
		default:
			return "", err
		}
	}
}

func finishLine(buf []byte, maxLen int) (string, error) {
	n := len(buf)
	if n > 0 && buf[n-1] == '\n' {
		n--
	}
	if n > 0 && buf[n-1] == '\r' {
		n--
	}
	if n > maxLen {
		return "", ErrLineTooLong
	}
	return string(buf[:n]), nil
}
