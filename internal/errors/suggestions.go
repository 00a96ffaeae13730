package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Command     string
}

// SuggestionsFor returns fixes for a failure, based on its kind. Field
// help from a ValidationErrorCollection comes first.
func SuggestionsFor(err error) []ErrorSuggestion {
	if err == nil {
		return nil
	}

	var suggestions []ErrorSuggestion

	var collection *ValidationErrorCollection
	if errors.As(err, &collection) {
		for _, fe := range collection.Errors {
			for _, help := range fe.Suggestions() {
				suggestions = append(suggestions, ErrorSuggestion{
					Title:       fe.FieldName,
					Description: help,
				})
			}
		}
	}

	var re *RepoError
	if !errors.As(err, &re) {
		return suggestions
	}

	switch re.Kind {
	case KindInvalidPath:
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Use an absolute repository path",
			Description: "Repository paths start with \"/\"; escape a literal * as \\*",
		})
	case KindNotFound:
		suggestions = append(suggestions,
			ErrorSuggestion{
				Title:   "List what exists",
				Command: "resrepo find '/*'",
			},
			ErrorSuggestion{
				Title:       "Rebuild from configuration",
				Description: "The dump may predate new sources",
				Command:     "resrepo dump",
			},
		)
	case KindNotADirectory:
		suggestions = append(suggestions, ErrorSuggestion{
			Title:   "Inspect the resource instead",
			Command: "resrepo get " + re.Path,
		})
	case KindOutOfRange:
		suggestions = append(suggestions, ErrorSuggestion{
			Title:   "List the recorded versions",
			Command: "resrepo history " + re.Path,
		})
	case KindReadOnly:
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Disable read-only mode",
			Description: "Set dump.read_only to false, or rebuild with resrepo dump",
		})
	case KindConfig:
		suggestions = append(suggestions, ErrorSuggestion{
			Title:   "Validate configuration",
			Command: "resrepo config validate",
		})
	}

	return suggestions
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(title string, suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
	}

	return output.String()
}

// FormatErrorWithSuggestions formats an error for user display
func FormatErrorWithSuggestions(err error) string {
	if err == nil {
		return ""
	}

	return FormatSuggestions(err.Error(), SuggestionsFor(err))
}
