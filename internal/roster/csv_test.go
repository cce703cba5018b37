package roster

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = "api_id,name,email,phone_number,approval_status," +
	"What is something you’ve always wanted to learn about but haven’t started yet?," +
	"\"If you had all the time and money in the world, what would you do?\"," +
	"\"If you could have an unlimited supply of one completely useless item, what would it be?\"," +
	"What's the last thing you worked on that you're proud of?\n" +
	"a1,Alice,alice@example.com,555-0100,approved,woodworking,travel the world,bottle caps,built a canoe\n" +
	"b2,Bob,bob@example.com,555-0101,pending,baking,open a bakery,rubber ducks,sourdough starter\n"

func TestReadCSVMapsQuestionHeaders(t *testing.T) {
	t.Parallel()

	attendees, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if attendees.Len() != 2 {
		t.Fatalf("expected 2 attendees, got %d", attendees.Len())
	}

	alice := attendees.FindByID("a1")
	if alice == nil {
		t.Fatalf("expected to find attendee a1")
	}

	if alice.WhatToLearn != "woodworking" {
		t.Fatalf("unexpected what_to_learn: %q", alice.WhatToLearn)
	}
	if alice.DoWithTimeAndMoney != "travel the world" {
		t.Fatalf("unexpected do_with_time_and_money: %q", alice.DoWithTimeAndMoney)
	}
	if alice.UselessItem != "bottle caps" {
		t.Fatalf("unexpected useless_item: %q", alice.UselessItem)
	}
	if alice.ProudOf != "built a canoe" {
		t.Fatalf("unexpected proud_of: %q", alice.ProudOf)
	}
	if alice.ApprovalStatus != "approved" {
		t.Fatalf("unexpected approval_status: %q", alice.ApprovalStatus)
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	t.Parallel()

	attendees, err := ReadCSV(strings.NewReader("api_id,name\nx1,Cara\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if attendees.Len() != 1 {
		t.Fatalf("expected 1 attendee, got %d", attendees.Len())
	}

	cara := attendees.Items[0]
	if cara.Name != "Cara" {
		t.Fatalf("unexpected name: %q", cara.Name)
	}
	// Absent columns yield empty fields, not errors.
	if cara.ApprovalStatus != "" || cara.WhatToLearn != "" {
		t.Fatalf("expected empty fields for missing columns, got %+v", cara)
	}
}

func TestReadCSVStripsBOM(t *testing.T) {
	t.Parallel()

	attendees, err := ReadCSV(strings.NewReader("\ufeffapi_id,name\nx1,Cara\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if attendees.Len() != 1 || attendees.Items[0].APIID != "x1" {
		t.Fatalf("expected BOM-prefixed header to map api_id, got %+v", attendees.Items)
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	t.Parallel()

	attendees, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attendees.Len() != 0 {
		t.Fatalf("expected empty roster, got %d", attendees.Len())
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
}
