package roster

import (
	"encoding/json"
	"os"
	"time"
)

// ExcludedAttendees is the persistent exclude list: applicants dropped in
// earlier runs (or by hand) that should never re-enter a batch.
type ExcludedAttendees struct {
	Items []*ExcludedAttendee
}

type ExcludedAttendee struct {
	ID         string
	Name       string
	Reason     string
	ExcludedAt time.Time
}

func (a *Attendees) ToExcluded(reason string) *ExcludedAttendees {
	excluded := &ExcludedAttendees{}
	for _, attendee := range a.Items {
		excluded.Items = append(excluded.Items, &ExcludedAttendee{
			ID:         attendee.APIID,
			Name:       attendee.Name,
			Reason:     reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

func GetExcludedAttendeesFromFile(path string) (*ExcludedAttendees, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedAttendees{}, nil
	}

	var excluded ExcludedAttendees
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedAttendees) Append(s *ExcludedAttendees) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedAttendees) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, attendee := range e.Items {
		ids = append(ids, attendee.ID)
	}
	return ids
}

func (e *ExcludedAttendees) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
