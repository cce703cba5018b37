package roster

import (
	"encoding/json"
	"os"
)

const (
	AttendeeIDField   = "APIID"
	AttendeeNameField = "Name"
)

// Attendee is a single row of the event roster as exported by the intake form.
// Contact fields are carried through ingestion only and never enter the
// enrichment stages.
type Attendee struct {
	APIID              string `json:"api_id,omitempty"`
	Name               string `json:"name,omitempty"`
	Email              string `json:"email,omitempty"`
	PhoneNumber        string `json:"phone_number,omitempty"`
	CreatedAt          string `json:"created_at,omitempty"`
	ApprovalStatus     string `json:"approval_status,omitempty"`
	WhatToLearn        string `json:"what_to_learn,omitempty"`
	DoWithTimeAndMoney string `json:"do_with_time_and_money,omitempty"`
	UselessItem        string `json:"useless_item,omitempty"`
	ProudOf            string `json:"proud_of,omitempty"`
	Accommodations     string `json:"accommodations,omitempty"`
}

type Attendees struct {
	Items []*Attendee
}

func (a *Attendees) Len() int {
	return len(a.Items)
}

func (a *Attendees) FindByID(id string) *Attendee {
	for _, attendee := range a.Items {
		if attendee.APIID == id {
			return attendee
		}
	}
	return nil
}

func (a *Attendees) Names() []string {
	names := make([]string, 0, len(a.Items))
	for _, attendee := range a.Items {
		names = append(names, attendee.Name)
	}
	return names
}

func (att *Attendee) GetStringField(name string) string {
	switch name {
	case AttendeeIDField:
		return att.APIID
	case AttendeeNameField:
		return att.Name
	default:
		return ""
	}
}

// Exclude removes attendees whose field matches one of the targets, keeping
// the remaining roster in its original order. Returns the removed api_ids.
func (a *Attendees) Exclude(name string, targets []string) []string {
	drop := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		drop[target] = struct{}{}
	}

	var excluded []string
	kept := make([]*Attendee, 0, len(a.Items))
	for _, attendee := range a.Items {
		if _, ok := drop[attendee.GetStringField(name)]; ok {
			excluded = append(excluded, attendee.APIID)
			continue
		}
		kept = append(kept, attendee)
	}

	a.Items = kept
	return excluded
}

func (a *Attendees) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "roster_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return "", err
	}
	return file.Name(), nil
}
