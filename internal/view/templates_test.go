package view

import "testing"

func TestNewEngineParsesTemplates(t *testing.T) {
	if _, err := NewEngine(); err != nil {
		t.Fatalf("parse templates: %v", err)
	}
}
