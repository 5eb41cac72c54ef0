package command

import (
	"strings"

	"github.com/yndnr/kvdis-go/internal/core/domain"
)

// EXPIRE accepts the key plus one to three duration tokens ("1h 27m 13s").
const (
	expireMinTokens = 3
	expireMaxTokens = 5
)

// Parse turns one protocol line into a Command.
//
// Tokens are split on whitespace and the verb is case-sensitive. Parse has
// no side effects.
func Parse(line string) (Command, error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil, domain.ErrIsEmpty
	}

	switch words[0] {
	case "SET":
		if len(words) != 3 {
			return nil, arity(words)
		}
		return Set{Key: words[1], Value: words[2]}, nil
	case "GET":
		if len(words) != 2 {
			return nil, arity(words)
		}
		return Get{Key: words[1]}, nil
	case "DEL":
		if len(words) != 2 {
			return nil, arity(words)
		}
		return Del{Key: words[1]}, nil
	case "EXISTS":
		if len(words) != 2 {
			return nil, arity(words)
		}
		return Exists{Key: words[1]}, nil
	case "EXPIRE":
		if len(words) < expireMinTokens || len(words) > expireMaxTokens {
			return nil, arity(words)
		}
		ttl, err := ParseDuration(strings.Join(words[2:], " "))
		if err != nil {
			return nil, domain.ErrInvalidParameters.Wrap(err)
		}
		return Expire{Key: words[1], TTL: ttl}, nil
	case "INCR":
		if len(words) != 2 {
			return nil, arity(words)
		}
		return Incr{Key: words[1]}, nil
	case "DECR":
		if len(words) != 2 {
			return nil, arity(words)
		}
		return Decr{Key: words[1]}, nil
	case "CLEAR":
		if len(words) != 1 {
			return nil, arity(words)
		}
		return Clear{}, nil
	case "SAVE":
		if len(words) != 1 {
			return nil, arity(words)
		}
		return Save{}, nil
	case "LOAD":
		if len(words) != 1 {
			return nil, arity(words)
		}
		return Load{}, nil
	default:
		return nil, domain.ErrNotACommand.WithDetails("verb %q", words[0])
	}
}

func arity(words []string) error {
	return domain.ErrInvalidParameters.WithDetails("%s got %d tokens", words[0], len(words))
}
