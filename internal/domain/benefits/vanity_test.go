package benefits

import "testing"

func TestMedicaidVanityURL(t *testing.T) {
	tests := []struct {
		product string
		tag     YearTag
		want    string
	}{
		{"PMAP0001", YearCurrent, "https://www.bluecrossmn.com/MH-BAFC-current"},
		{"PMAP0002", YearNext, "https://www.bluecrossmn.com/MH-BAFC-nextyear"},
		{"MSHO0001", YearCurrent, "https://www.bluecrossmn.com/MH-SBMSC-current"},
		{"MCAR0001", YearCurrent, "https://www.bluecrossmn.com/MH-MNC-current"},
		{"MCAR0002", YearNext, "https://www.bluecrossmn.com/MH-MNC-nextyear"},
		{"MSCP0001", YearCurrent, "https://www.bluecrossmn.com/MH-MSCP-current"},
		{"MSCP0002", YearNext, "https://www.bluecrossmn.com/MH-MSCP-nextyear"},
		{"XYZ", YearCurrent, "https://www.bluecrossmn.com/shop-plans/minnesota-health-care-programs"},
		{"", YearNext, "https://www.bluecrossmn.com/shop-plans/minnesota-health-care-programs"},
	}
	for _, tt := range tests {
		if got := MedicaidVanityURL(tt.product, tt.tag); got != tt.want {
			t.Errorf("MedicaidVanityURL(%q, %q) = %q, want %q", tt.product, tt.tag, got, tt.want)
		}
	}
}

func TestHandbookURL_CustomBase(t *testing.T) {
	got := HandbookURL("https://staging.example.com/", "MSHO0001", YearNext)
	if got != "https://staging.example.com/MH-SBMSC-nextyear" {
		t.Errorf("unexpected url %q", got)
	}
}
