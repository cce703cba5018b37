package filtering

import (
	"context"
	"strings"

	"github.com/ferrovax/mingle/internal/roster"
	"go.uber.org/zap"
)

const approvedStatus = "approved"

type identityFilter struct{}

// NewIdentity creates a filter that drops rows missing the api_id identity
// field. Such rows cannot be cross-referenced or scored; they are skipped
// with a warning rather than aborting the batch.
func NewIdentity() Filter {
	return &identityFilter{}
}

func (f *identityFilter) Name() string { return "identity" }

func (f *identityFilter) Disable(string) {}

func (f *identityFilter) IsEnabled() bool { return true }

func (f *identityFilter) Validate(*Config) error { return nil }

func (f *identityFilter) Apply(_ context.Context, deps Deps, a *roster.Attendees) (*roster.Attendees, Step, error) {
	initial := a.Len()

	kept := make([]*roster.Attendee, 0, initial)
	for _, attendee := range a.Items {
		if strings.TrimSpace(attendee.APIID) == "" {
			if deps.Logger != nil {
				deps.Logger.Warn("skipping row without api_id",
					zap.String("name", attendee.Name),
				)
			}
			continue
		}
		kept = append(kept, attendee)
	}

	a.Items = kept
	return a, Step{Initial: initial, Dropped: initial - a.Len(), Left: a.Len()}, nil
}

func (f *identityFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}

type approvedFilter struct{}

// NewApproved creates the eligibility filter: only attendees whose
// approval_status normalizes to "approved" proceed to enrichment. Absent or
// empty status counts as not approved.
func NewApproved() Filter {
	return &approvedFilter{}
}

func (f *approvedFilter) Name() string { return "approved" }

func (f *approvedFilter) Disable(string) {}

func (f *approvedFilter) IsEnabled() bool { return true }

func (f *approvedFilter) Validate(*Config) error { return nil }

func (f *approvedFilter) Apply(_ context.Context, deps Deps, a *roster.Attendees) (*roster.Attendees, Step, error) {
	initial := a.Len()

	kept := make([]*roster.Attendee, 0, initial)
	for _, attendee := range a.Items {
		status := strings.TrimSpace(attendee.ApprovalStatus)
		if strings.EqualFold(status, approvedStatus) {
			kept = append(kept, attendee)
		}
	}

	a.Items = kept
	return a, Step{Initial: initial, Dropped: initial - a.Len(), Left: a.Len()}, nil
}

func (f *approvedFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{"status": approvedStatus}}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes attendees listed in the
// configured exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, a *roster.Attendees) (*roster.Attendees, Step, error) {
	initial := a.Len()
	if f.path == "" {
		return a, Step{Initial: initial, Dropped: 0, Left: a.Len()}, nil
	}

	excluded, err := roster.GetExcludedAttendeesFromFile(f.path)
	if err != nil {
		return a, Step{}, err
	}

	removed := a.Exclude(roster.AttendeeIDField, excluded.IDs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding attendees based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_attendees", removed),
			zap.Int("attendees_left", a.Len()),
		)
	}

	return a, Step{Initial: initial, Dropped: len(removed), Left: a.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
