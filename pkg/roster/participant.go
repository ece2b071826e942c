package roster

import (
	"fmt"

	"github.com/matzehuels/krampus/pkg/errors"
)

// Participant is one person taking part in the exchange.
// Participants are identified by position during a draw and by Name for
// exclusions.
type Participant struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Except string `json:"except,omitempty"` // Name that must not be paired with this participant
}

// Excludes reports whether p's exclusion names other.
func (p Participant) Excludes(other Participant) bool {
	return p.Except != "" && p.Except == other.Name
}

// String returns "Name <email>".
func (p Participant) String() string {
	return fmt.Sprintf("%s <%s>", p.Name, p.Email)
}

// Validate checks every participant's name and email and rejects duplicate
// names, since exclusions refer to participants by name.
func Validate(participants []Participant) error {
	seen := make(map[string]int, len(participants))
	for i, p := range participants {
		if err := errors.ValidateName(p.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRoster, err, "participant %d", i+1)
		}
		if err := errors.ValidateEmail(p.Email); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRoster, err, "participant %q", p.Name)
		}
		if j, dup := seen[p.Name]; dup {
			return errors.New(errors.ErrCodeInvalidRoster,
				"duplicate participant name %q (entries %d and %d)", p.Name, j+1, i+1)
		}
		seen[p.Name] = i
	}
	return nil
}

// Warnings returns non-fatal problems: exclusions naming nobody on the roster
// and participants excluding themselves. Neither affects the draw.
func Warnings(participants []Participant) []string {
	names := make(map[string]bool, len(participants))
	for _, p := range participants {
		names[p.Name] = true
	}

	var warnings []string
	for _, p := range participants {
		switch {
		case p.Except == "":
		case p.Except == p.Name:
			warnings = append(warnings, fmt.Sprintf("%s excludes themselves", p.Name))
		case !names[p.Except]:
			warnings = append(warnings, fmt.Sprintf("%s excludes unknown participant %q", p.Name, p.Except))
		}
	}
	return warnings
}
