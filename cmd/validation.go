package cmd

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/conneroisu/resrepo/internal/pathpattern"
)

// validatePathArg checks a repository path or pattern given on the command
// line before any repository is opened.
func validatePathArg(arg string) error {
	if strings.TrimSpace(arg) == "" {
		return fmt.Errorf("path must not be empty")
	}

	if strings.ContainsRune(arg, 0) {
		return fmt.Errorf("path %q contains a NUL byte", arg)
	}

	if !pathpattern.IsAbsolute(arg) {
		return fmt.Errorf("path %q must be absolute (start with /)", arg)
	}

	return nil
}

// validateTagName rejects names that cannot round-trip through a dump or a
// shell.
func validateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("tag name must not be empty")
	}

	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("tag name %q contains whitespace or control characters", name)
		}
	}

	return nil
}

// validateTagNames validates a slice of tag names
func validateTagNames(names []string) error {
	for _, name := range names {
		if err := validateTagName(name); err != nil {
			return err
		}
	}
	return nil
}
