package fhirmodels

import (
	"encoding/json"
	"testing"
)

func TestCodeableConcept_HasCode(t *testing.T) {
	cc := &CodeableConcept{Coding: []Coding{{Code: "VISPOL"}, {Code: "x"}}}
	if !cc.HasCode(CoverageTypeVision) {
		t.Error("expected VISPOL to be found")
	}
	if cc.HasCode(CoverageTypeDental) {
		t.Error("did not expect DENTPRG")
	}

	var nilCC *CodeableConcept
	if nilCC.HasCode("x") {
		t.Error("expected nil concept to have no codes")
	}
}

func TestCoverage_ClassValue(t *testing.T) {
	raw := `{
		"resourceType": "Coverage",
		"id": "cov-1",
		"status": "active",
		"class": [
			{"type": {"coding": [{"code": "group"}]}, "value": "G100"},
			{"type": {"coding": [{"code": "plan"}]}, "value": "MSHO0001"}
		]
	}`
	var cov Coverage
	if err := json.Unmarshal([]byte(raw), &cov); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	group, ok := cov.ClassValue(CoverageClassGroup)
	if !ok || group != "G100" {
		t.Errorf("expected group G100, got %q (%v)", group, ok)
	}
	plan, ok := cov.ClassValue(CoverageClassPlan)
	if !ok || plan != "MSHO0001" {
		t.Errorf("expected plan MSHO0001, got %q (%v)", plan, ok)
	}
	if _, ok := cov.ClassValue("subgroup"); ok {
		t.Error("expected subgroup to be missing")
	}
}

func TestCoverageBundle_Coverages(t *testing.T) {
	b := &CoverageBundle{Entry: []CoverageEntry{
		{Resource: &Coverage{ID: "a"}},
		{FullURL: "urn:uuid:empty"},
		{Resource: &Coverage{ID: "b"}},
	}}
	got := b.Coverages()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("expected [a b], got %v", got)
	}

	var nilBundle *CoverageBundle
	if len(nilBundle.Coverages()) != 0 {
		t.Error("expected no coverages from nil bundle")
	}
}
