package snapshot

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/yndnr/kvdis-go/internal/core/domain"
)

const (
	fieldSep        = ","
	timestampLayout = time.RFC3339
)

// EncodeLine renders one entry as "key,value" or "key,value,timestamp".
//
// The timestamp is the absolute expiration instant in UTC at second
// precision. Delimiters inside key or value are not escaped.
func EncodeLine(key string, e domain.Entry) string {
	var b strings.Builder
	b.Grow(len(key) + len(e.Value) + 22)
	b.WriteString(key)
	b.WriteString(fieldSep)
	b.WriteString(e.Value)
	if e.HasExpiration() {
		b.WriteString(fieldSep)
		b.WriteString(e.ExpiresAt.UTC().Format(timestampLayout))
	}
	return b.String()
}

// DecodeLine parses one line produced by EncodeLine.
//
// A trailing carriage return is ignored. The returned error is one of
// domain.ErrKeyRead, domain.ErrValueRead or domain.ErrTimestampRead.
func DecodeLine(line string) (string, domain.Entry, error) {
	line = strings.TrimSuffix(line, "\r")

	fields := strings.SplitN(line, fieldSep, 3)
	key := fields[0]
	if key == "" {
		return "", domain.Entry{}, domain.ErrKeyRead
	}
	if len(fields) < 2 {
		return "", domain.Entry{}, domain.ErrValueRead
	}

	entry := domain.NewEntry(fields[1])
	if len(fields) == 3 {
		ts, err := time.Parse(timestampLayout, fields[2])
		if err != nil {
			return "", domain.Entry{}, domain.ErrTimestampRead.Wrap(err)
		}
		entry.ExpiresAt = ts
	}
	return key, entry, nil
}

// Encode writes every entry, one per line, in no particular order.
// Expired entries are written as well.
func Encode(w io.Writer, entries map[string]domain.Entry) error {
	bw := bufio.NewWriter(w)
	for key, e := range entries {
		if _, err := bw.WriteString(EncodeLine(key, e)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode reads lines from r and hands each decoded entry to fn.
//
// Blank lines are skipped. Decoding stops at the first malformed line or the
// first error returned by fn; entries handed to fn before that are not
// revoked. A final line without a trailing newline is decoded as well.
func Decode(r io.Reader, fn func(key string, e domain.Entry) error) error {
	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return domain.ErrIORead.Wrap(err)
		}
		eof := err != nil

		line = strings.TrimSuffix(line, "\n")
		if strings.TrimSpace(line) != "" {
			key, entry, derr := DecodeLine(line)
			if derr != nil {
				var de *domain.Error
				if errors.As(derr, &de) {
					return de.WithDetails("line %d", lineNo)
				}
				return derr
			}
			if ferr := fn(key, entry); ferr != nil {
				return ferr
			}
		}

		if eof {
			return nil
		}
	}
}

// DecodeBytes is Decode over an in-memory snapshot.
func DecodeBytes(data []byte, fn func(key string, e domain.Entry) error) error {
	return Decode(bytes.NewReader(data), fn)
}
