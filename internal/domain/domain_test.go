package domain

import (
	"testing"
	"time"
)

func TestQuestionIsFreeText(t *testing.T) {
	free := Question{ID: 1, Text: "How many weeks?"}
	choice := Question{ID: 2, Text: "Any pain?", Options: []Option{{Label: "Yes", Value: "Yes"}}}

	if !free.IsFreeText() {
		t.Error("Expected free text without options")
	}
	if choice.IsFreeText() {
		t.Error("Expected choice question with options")
	}
}

func TestMatchOption(t *testing.T) {
	q := Question{Options: []Option{
		{Label: "Vaginal birth", Value: "vaginal"},
		{Label: "C-section", Value: "c_section"},
	}}

	if opt, ok := q.MatchOption("vaginal"); !ok || opt.Value != "vaginal" {
		t.Error("Expected match by value")
	}
	if opt, ok := q.MatchOption("C-section"); !ok || opt.Value != "c_section" {
		t.Error("Expected match by label")
	}
	if _, ok := q.MatchOption("home birth"); ok {
		t.Error("Expected no match for unknown answer")
	}
	if _, ok := q.MatchOption(""); ok {
		t.Error("Expected no match for empty answer")
	}
}

func TestPostpartumWeeks(t *testing.T) {
	now := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	m := Mother{}
	if _, ok := m.PostpartumWeeks(now); ok {
		t.Error("Expected no weeks without a delivery date")
	}

	delivered := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	m.DeliveredAt = &delivered
	weeks, ok := m.PostpartumWeeks(now)
	if !ok {
		t.Fatal("Expected weeks with a delivery date")
	}
	if weeks < 5.9 || weeks > 6.1 {
		t.Errorf("Expected about 6 weeks, got %.2f", weeks)
	}

	// A future delivery date clamps to zero rather than going negative.
	future := now.Add(14 * 24 * time.Hour)
	m.DeliveredAt = &future
	if weeks, _ := m.PostpartumWeeks(now); weeks != 0 {
		t.Errorf("Expected clamp at zero, got %.2f", weeks)
	}
}

func TestMotherProfileOmitsSecrets(t *testing.T) {
	age := 31
	m := Mother{ID: 7, Name: "Ana", PasswordHash: "hash", Age: &age, Country: "PT"}

	p := m.Profile()
	if p.Name != "Ana" || p.Country != "PT" {
		t.Errorf("Unexpected profile: %+v", p)
	}
	if p.Age == nil || *p.Age != 31 {
		t.Error("Expected age carried over")
	}
}
