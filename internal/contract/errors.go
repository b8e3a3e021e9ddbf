package contract

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across packages.
var (
	ErrNotGitRepo  = errors.New("not a git repository")
	ErrGitNotFound = errors.New("git executable not found")
	ErrNoBranches  = errors.New("no remote branches found")
)

// plainErrorTypes carry no information beyond their message.
var plainErrorTypes = map[string]struct{}{
	"*errors.errorString": {},
	"*errors.joinError":   {},
	"*fmt.wrapError":      {},
	"*fmt.wrapErrors":     {},
}

// ErrorDigest renders an error chain as "outer → inner → root".
// Errors carrying several causes are flattened, each cause joined with " | ".
// Non-trivial error types are prefixed with their type in brackets.
func ErrorDigest(err error) string {
	if err == nil {
		return ""
	}
	return strings.Join(digestSegments(err), " → ")
}

func digestSegments(err error) []string {
	label := func(msg string) string {
		typ := fmt.Sprintf("%T", err)
		if _, ok := plainErrorTypes[typ]; ok {
			return msg
		}
		return "[" + typ + "] " + msg
	}

	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		causes := x.Unwrap()
		parts := make([]string, 0, len(causes))
		for _, c := range causes {
			if c != nil {
				parts = append(parts, ErrorDigest(c))
			}
		}
		joined := strings.Join(parts, " | ")
		// fmt.Errorf with several %w keeps its own prefix text
		if head := ownMessage(err.Error(), causes); head != "" {
			return []string{label(head), joined}
		}
		return []string{joined}
	case interface{ Unwrap() error }:
		inner := x.Unwrap()
		if inner == nil {
			return []string{label(err.Error())}
		}
		head := ownMessage(err.Error(), []error{inner})
		rest := digestSegments(inner)
		if head == "" {
			return rest
		}
		return append([]string{label(head)}, rest...)
	default:
		return []string{label(err.Error())}
	}
}

// ownMessage strips the text of the causes from the message of their wrapper.
func ownMessage(msg string, causes []error) string {
	for _, c := range causes {
		if c == nil {
			continue
		}
		msg = strings.Replace(msg, c.Error(), "", 1)
	}
	msg = strings.TrimSpace(msg)
	msg = strings.TrimRight(msg, ":")
	return strings.TrimSpace(msg)
}
