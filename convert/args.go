package convert

import (
	"errors"
	"strings"
	"unicode"
)

var ErrBadQuoting = errors.New("invalid command line string")

// SplitArgs splits a command line on whitespace. Single and double quotes
// group words, a backslash escapes the next rune outside single quotes.
// An empty quoted word ('' or "") is kept as an empty argument instead of
// collapsing into the surrounding whitespace.
func SplitArgs(line string) ([]string, error) {
	args := []string{}
	buf := ""

	var escaped, doubleQuoted, singleQuoted bool

	got := false

	for _, r := range line {
		if escaped {
			buf += string(r)
			escaped = false

			continue
		}

		if r == '\\' {
			if singleQuoted {
				buf += string(r)
			} else {
				escaped = true
			}

			continue
		}

		if unicode.IsSpace(r) {
			if singleQuoted || doubleQuoted {
				buf += string(r)
			} else if got {
				args = append(args, buf)
				buf = ""
				got = false
			}

			continue
		}

		switch r {
		case '"':
			if !singleQuoted {
				doubleQuoted = !doubleQuoted
				got = true

				continue
			}
		case '\'':
			if !doubleQuoted {
				singleQuoted = !singleQuoted
				got = true

				continue
			}
		}

		got = true
		buf += string(r)
	}

	if got {
		args = append(args, buf)
	}

	if escaped || singleQuoted || doubleQuoted {
		return nil, ErrBadQuoting
	}

	return args, nil
}

// Command is a parsed command invocation.
type Command struct {
	Prefix string
	Name   string
	Args   []string
}

// ParseCommand splits content into a command when it starts with prefix.
// ok is false when content isn't a command.
func ParseCommand(prefix, content string) (cmd Command, ok bool, err error) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return Command{}, false, nil
	}

	args, err := SplitArgs(strings.TrimPrefix(content, prefix))
	if err != nil {
		return Command{}, true, err
	}

	if len(args) == 0 {
		return Command{}, false, nil
	}

	return Command{
		Prefix: prefix,
		Name:   strings.ToLower(args[0]),
		Args:   args[1:],
	}, true, nil
}
