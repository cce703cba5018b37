package roster

// Profile is the narrowed projection of an approved attendee that enters the
// enrichment and matching stages. Contact and accommodation fields are
// deliberately absent so they never reach external services or the output
// document.
type Profile struct {
	APIID              string `json:"api_id"`
	Name               string `json:"name"`
	WhatToLearn        string `json:"what_to_learn"`
	DoWithTimeAndMoney string `json:"do_with_time_and_money"`
	UselessItem        string `json:"useless_item"`
	ProudOf            string `json:"proud_of"`

	// DiscussionTopics is populated once by topic generation. An empty slice
	// is a valid outcome; nil means the stage has not run yet.
	DiscussionTopics []string `json:"discussion_topics"`

	// Scores holds the pairwise match scores keyed by peer api_id. The
	// serializer projects them onto display names.
	Scores map[string]int `json:"-"`
}

// Batch is the ordered set of approved profiles processed in one run.
type Batch struct {
	Profiles []*Profile
}

func (b *Batch) Len() int {
	return len(b.Profiles)
}

func (b *Batch) FindByID(id string) *Profile {
	for _, profile := range b.Profiles {
		if profile.APIID == id {
			return profile
		}
	}
	return nil
}

func (b *Batch) Names() []string {
	names := make([]string, 0, len(b.Profiles))
	for _, profile := range b.Profiles {
		names = append(names, profile.Name)
	}
	return names
}

// Project narrows the full roster to enrichment profiles, preserving order.
func Project(attendees *Attendees) *Batch {
	batch := &Batch{Profiles: make([]*Profile, 0, attendees.Len())}
	for _, attendee := range attendees.Items {
		batch.Profiles = append(batch.Profiles, &Profile{
			APIID:              attendee.APIID,
			Name:               attendee.Name,
			WhatToLearn:        attendee.WhatToLearn,
			DoWithTimeAndMoney: attendee.DoWithTimeAndMoney,
			UselessItem:        attendee.UselessItem,
			ProudOf:            attendee.ProudOf,
		})
	}
	return batch
}
