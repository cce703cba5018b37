package roster

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry is the serialized projection of one enriched profile. Field order and
// key naming are part of the output contract for downstream consumers.
type Entry struct {
	APIID              string         `json:"api_id"`
	Name               string         `json:"name"`
	WhatToLearn        string         `json:"what_to_learn"`
	DoWithTimeAndMoney string         `json:"do_with_time_and_money"`
	UselessItem        string         `json:"useless_item"`
	ProudOf            string         `json:"proud_of"`
	DiscussionTopics   []string       `json:"discussion_topics"`
	MatchingScores     map[string]int `json:"matching_scores"`
}

// Document is the final pipeline artifact: the enriched batch in its original
// filtered order.
type Document struct {
	Entries []*Entry
}

// BuildDocument projects the batch into its serialized form. Internal score
// maps are keyed by api_id; here they are re-keyed by display name. Every
// profile keeps its entry, but when two attendees share a display name the
// score map key would collide: the first occurrence in batch order wins and
// the name is reported back so the caller can surface a warning instead of
// silently overwriting.
func BuildDocument(batch *Batch) (*Document, []string) {
	doc := &Document{Entries: make([]*Entry, 0, batch.Len())}

	first := make(map[string]string, batch.Len())
	var duplicates []string
	for _, profile := range batch.Profiles {
		if id, ok := first[profile.Name]; ok {
			if id != profile.APIID {
				duplicates = append(duplicates, profile.Name)
			}
			continue
		}
		first[profile.Name] = profile.APIID
	}

	for _, profile := range batch.Profiles {
		topics := profile.DiscussionTopics
		if topics == nil {
			topics = []string{}
		}

		scores := make(map[string]int, len(profile.Scores))
		for _, peer := range batch.Profiles {
			if first[peer.Name] != peer.APIID {
				continue
			}
			if score, ok := profile.Scores[peer.APIID]; ok {
				scores[peer.Name] = score
			}
		}

		doc.Entries = append(doc.Entries, &Entry{
			APIID:              profile.APIID,
			Name:               profile.Name,
			WhatToLearn:        profile.WhatToLearn,
			DoWithTimeAndMoney: profile.DoWithTimeAndMoney,
			UselessItem:        profile.UselessItem,
			ProudOf:            profile.ProudOf,
			DiscussionTopics:   topics,
			MatchingScores:     scores,
		})
	}

	return doc, duplicates
}

// Bytes renders the document as pretty-printed UTF-8 JSON with 2-space
// indentation for human inspection.
func (d *Document) Bytes() ([]byte, error) {
	data, err := json.MarshalIndent(d.Entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

func (d *Document) WriteFile(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (d *Document) Len() int {
	return len(d.Entries)
}
