package facts

import (
	"strconv"

	"github.com/rs/zerolog/log"
)

// Lookup navigates a dotted path into root, one segment at a time, and
// returns the resolved child value. Results are memoized on the root: the
// second lookup of the same path returns the identical cached child without
// re-traversal.
//
// All malformed-path conditions are non-fatal. They produce a debug log
// entry and a false result; Lookup never fails hard.
func Lookup(root *Value, segments []string) (*Value, bool) {
	if root == nil || len(segments) == 0 {
		return nil, false
	}

	key := PathKey(segments)
	if child := root.child(key); child != nil {
		return child, true
	}

	cur := root.data
	for _, segment := range segments {
		switch container := cur.(type) {
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil {
				log.Debug().Str("segment", segment).
					Msg("cannot look up a sequence element: expected an integral value")
				return nil, false
			}
			if index < 0 {
				log.Debug().Str("segment", segment).
					Msg("cannot look up a sequence element: expected a non-negative value")
				return nil, false
			}
			if len(container) == 0 {
				log.Debug().Str("segment", segment).
					Msg("cannot look up a sequence element: the sequence is empty")
				return nil, false
			}
			if index >= len(container) {
				log.Debug().Str("segment", segment).Int("length", len(container)).
					Msg("cannot look up a sequence element: index out of range")
				return nil, false
			}
			cur = container[index]
		case *Mapping:
			// Plain string key first, symbolic key as the fallback.
			cur = container.Lookup(segment)
		default:
			// Compatibility quirk carried over from the reference engine:
			// a non-container mid-path logs and continues without consuming
			// the segment rather than failing the whole path.
			log.Debug().Str("segment", segment).
				Msg("cannot look up element: container is not a sequence or mapping")
		}
		if cur == nil {
			return nil, false
		}
	}

	return root.wrapChild(cur, key), true
}
