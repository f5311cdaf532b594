// Package propdump parses the session's property-discovery dump: a text
// stream listing every get/set-able property of one object key.
//
// The format is a header line "Available functions for this data key",
// followed by rows of "<name> <RW|RO> <type-token>...", terminated by a
// blank line or a "Sub-Components" marker. Array-typed properties carry an
// "(ij)" suffix in the type token.
package propdump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	headerLine    = "Available functions for this data key"
	subComponents = "Sub-Components"
	arraySuffix   = "(ij)"
)

// ErrNoHeader means the stream never contained the dump header.
var ErrNoHeader = errors.New("propdump: header not found")

// Access is a property's read/write capability.
type Access string

const (
	ReadWrite Access = "RW"
	ReadOnly  Access = "RO"
)

// Property is one row of the dump.
type Property struct {
	Name    string
	Access  Access
	Type    string
	IsArray bool
}

// Parse reads a property dump from r. Rows before the header are ignored;
// parsing stops at the first blank line or Sub-Components marker after it.
// Rows that do not parse are skipped and reported in skipped, not fatal:
// the dump comes from an external process and is only partially reliable.
func Parse(r io.Reader) (props []Property, skipped []string, err error) {
	scanner := bufio.NewScanner(r)
	inBody := false
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if !inBody {
			if strings.Contains(trimmed, headerLine) {
				inBody = true
			}
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, subComponents) {
			break
		}

		p, ok := parseRow(trimmed)
		if !ok {
			skipped = append(skipped, trimmed)
			continue
		}
		props = append(props, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("propdump: read: %w", err)
	}
	if !inBody {
		return nil, nil, ErrNoHeader
	}
	return props, skipped, nil
}

func parseRow(line string) (Property, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Property{}, false
	}
	access := Access(fields[1])
	if access != ReadWrite && access != ReadOnly {
		return Property{}, false
	}
	typeToken := strings.Join(fields[2:], " ")
	isArray := strings.Contains(typeToken, arraySuffix)
	if isArray {
		typeToken = strings.TrimSpace(strings.ReplaceAll(typeToken, arraySuffix, ""))
	}
	return Property{
		Name:    fields[0],
		Access:  access,
		Type:    typeToken,
		IsArray: isArray,
	}, true
}
