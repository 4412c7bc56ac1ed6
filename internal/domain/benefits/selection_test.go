package benefits

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/memberportal/planinfo/internal/domain/coverage"
)

func titles(docs []BenefitDocument) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Title)
	}
	return out
}

func TestSelectDocuments_MedicaidOutsideWindow(t *testing.T) {
	plan := &coverage.MemberPlan{IsMedicaid: true, ProductID: "PMAP0001"}
	docs := SelectDocuments(plan, AvailableBooklets{}, date(2023, time.February, 15))

	if diff := cmp.Diff([]string{"2023 Member Handbook"}, titles(docs)); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	want := &HandbookRef{ProductID: "PMAP0001", YearTag: YearCurrent}
	if diff := cmp.Diff(want, docs[0].Content.Redirect); diff != "" {
		t.Errorf("redirect mismatch (-want +got):\n%s", diff)
	}
	if docs[0].Message != "View your coverage details within this PDF." {
		t.Errorf("unexpected message %q", docs[0].Message)
	}
}

func TestSelectDocuments_MedicaidInsideWindow(t *testing.T) {
	plan := &coverage.MemberPlan{IsMedicaid: true, ProductID: "PMAP0001"}
	docs := SelectDocuments(plan, AvailableBooklets{Medical: "JVBERi0="}, date(2023, time.October, 16))

	if diff := cmp.Diff([]string{"2023 Member Handbook", "2024 Member Handbook"}, titles(docs)); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if docs[0].YearTag != YearCurrent || docs[1].YearTag != YearNext {
		t.Errorf("unexpected year tags %q, %q", docs[0].YearTag, docs[1].YearTag)
	}
	for _, d := range docs {
		if d.Content.Inline != "" {
			t.Error("Medicaid handbooks must not carry inline content")
		}
	}
}

func TestSelectDocuments_CommercialMedicalInsideWindow(t *testing.T) {
	plan := &coverage.MemberPlan{LineOfBusiness: coverage.LOBMedical}
	docs := SelectDocuments(plan, AvailableBooklets{Medical: "JVBERi0=", SBC: ""}, date(2023, time.October, 16))

	want := []string{"Medical Benefit Booklet 2023", "Medical Benefit Booklet 2024"}
	if diff := cmp.Diff(want, titles(docs)); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	for _, d := range docs {
		if d.Content.Inline != "JVBERi0=" {
			t.Errorf("expected shared medical content, got %q", d.Content.Inline)
		}
	}
}

func TestSelectDocuments_CommercialFullOrder(t *testing.T) {
	plan := &coverage.MemberPlan{LineOfBusiness: coverage.LOBMedical}
	available := AvailableBooklets{Medical: "bWVk", Dental: "ZGVu", Vision: "dmlz", SBC: "c2Jj"}
	docs := SelectDocuments(plan, available, date(2023, time.March, 1))

	want := []string{"Summary of Benefits & Coverage", "Medical Benefit Booklet 2023"}
	if diff := cmp.Diff(want, titles(docs)); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if docs[0].YearTag != YearNone || docs[0].Message != "Explore the details of your plan and coverage." {
		t.Errorf("unexpected SBC descriptor %+v", docs[0])
	}
}

func TestSelectDocuments_VisionOnly(t *testing.T) {
	plan := &coverage.MemberPlan{LineOfBusiness: coverage.LOBVision}
	available := AvailableBooklets{Medical: "bWVk", Dental: "ZGVu", Vision: "dmlz"}
	docs := SelectDocuments(plan, available, date(2023, time.November, 1))

	if diff := cmp.Diff([]string{"Vision Benefit Booklet"}, titles(docs)); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectDocuments_DentalWithSBC(t *testing.T) {
	plan := &coverage.MemberPlan{LineOfBusiness: coverage.LOBDental}
	docs := SelectDocuments(plan, AvailableBooklets{Dental: "ZGVu", SBC: "c2Jj"}, date(2023, time.June, 1))

	want := []string{"Summary of Benefits & Coverage", "Dental Benefit Booklet"}
	if diff := cmp.Diff(want, titles(docs)); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectDocuments_MissingContentSuppressed(t *testing.T) {
	plan := &coverage.MemberPlan{LineOfBusiness: coverage.LOBMedical}
	docs := SelectDocuments(plan, AvailableBooklets{Medical: "   ", SBC: ""}, date(2023, time.October, 20))
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %v", titles(docs))
	}
}

func TestSelectDocuments_OtherLineOfBusiness(t *testing.T) {
	plan := &coverage.MemberPlan{LineOfBusiness: coverage.LOBOther}
	available := AvailableBooklets{Medical: "bWVk", Dental: "ZGVu", Vision: "dmlz", SBC: "c2Jj"}
	docs := SelectDocuments(plan, available, date(2023, time.October, 20))
	if diff := cmp.Diff([]string{"Summary of Benefits & Coverage"}, titles(docs)); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectDocuments_NilPlan(t *testing.T) {
	docs := SelectDocuments(nil, AvailableBooklets{SBC: "c2Jj"}, date(2023, time.October, 20))
	if docs == nil || len(docs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", docs)
	}
}

func TestSelectDocuments_CustomWindow(t *testing.T) {
	w := RenewalWindow{Start: MonthDay{time.November, 1}, End: MonthDay{time.December, 31}}
	plan := &coverage.MemberPlan{IsMedicaid: true, ProductID: "MSHO0001"}
	if got := len(w.SelectDocuments(plan, AvailableBooklets{}, date(2023, time.October, 20))); got != 1 {
		t.Errorf("expected 1 handbook before custom window, got %d", got)
	}
	if got := len(w.SelectDocuments(plan, AvailableBooklets{}, date(2023, time.November, 2))); got != 2 {
		t.Errorf("expected 2 handbooks inside custom window, got %d", got)
	}
}

func TestAvailableBooklets_SetGet(t *testing.T) {
	var a AvailableBooklets
	for _, k := range BookletKinds {
		a.Set(k, string(k)+"-content")
	}
	a.Set(KindMemberHandbook, "ignored")
	for _, k := range BookletKinds {
		if a.Get(k) != string(k)+"-content" {
			t.Errorf("expected content for %s, got %q", k, a.Get(k))
		}
	}
	if a.Present(KindMemberHandbook) {
		t.Error("handbooks are never stored inline")
	}
}
