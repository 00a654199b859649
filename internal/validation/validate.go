// Package validation implements the Validate stage: structural checks of
// the extracted candidate record. Hard issues (missing mandatory identity
// fields) fail the candidate; soft issues (optional-field gaps) become
// warnings and do not block progression.
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/candidate-screener/internal/types"
)

var validate = validator.New()

// Check validates a candidate record. It returns soft-issue warnings and a
// *Error for hard violations.
func Check(record *types.CandidateRecord) ([]string, error) {
	if record == nil {
		return nil, &Error{Message: "no candidate record"}
	}

	if err := validate.Struct(record); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return nil, &Error{
				Field:   first.Field(),
				Message: fmt.Sprintf("mandatory identity field failed %q check", first.Tag()),
			}
		}
		return nil, &Error{Message: err.Error()}
	}

	var warnings []string
	if len(record.Skills) == 0 {
		warnings = append(warnings, "no skills extracted from source document")
	}
	if _, ok := record.Level.Ordinal(); !ok {
		warnings = append(warnings, fmt.Sprintf("experience level %q is not a recognized level", record.Level))
	}
	if record.Location == "" {
		warnings = append(warnings, "candidate location is unknown")
	}
	return warnings, nil
}
