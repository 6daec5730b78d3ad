package domain

import "testing"

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name   string
		format FileFormat
		ok     bool
	}{
		{"Иванов - Хроники.fb2", FormatFB2, true},
		{"Иванов - Хроники.zip", FormatZip, true},
		{"Иванов - Хроники.fb2.zip", FormatZip, true},
		{"Иванов - Хроники.FB2", FormatFB2, true},
		{"Иванов - Хроники.pdf", "", false},
		{"без расширения", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		format, ok := FormatFor(tt.name)
		if ok != tt.ok || format != tt.format {
			t.Errorf("FormatFor(%q) = (%q, %v), want (%q, %v)", tt.name, format, ok, tt.format, tt.ok)
		}
	}
}

func TestFileFormat_MimeType(t *testing.T) {
	if got := FormatFB2.MimeType(); got != "application/fb2+xml" {
		t.Errorf("fb2 mime = %q", got)
	}
	if got := FormatZip.MimeType(); got != "application/zip" {
		t.Errorf("zip mime = %q", got)
	}
}

func TestBlobKey(t *testing.T) {
	if got := BlobKey(4211, FormatZip); got != "4211.zip" {
		t.Errorf("BlobKey = %q, want 4211.zip", got)
	}
}

func TestIsTechnicalName(t *testing.T) {
	technical := []string{"random_thumb.jpg", "cover.png", "IMG_preview.webp", "photo.jpeg", ""}
	for _, name := range technical {
		if !IsTechnicalName(name) {
			t.Errorf("IsTechnicalName(%q) = false, want true", name)
		}
	}

	content := []string{"Иванов_Иван_Хроники_севера.zip", "книга.fb2"}
	for _, name := range content {
		if IsTechnicalName(name) {
			t.Errorf("IsTechnicalName(%q) = true, want false", name)
		}
	}
}

func TestRunStats_Record(t *testing.T) {
	var stats RunStats

	stats.Record(Outcome{Status: OutcomeAttached})
	stats.Record(Outcome{Status: OutcomeSkipped, Reason: SkipNoMatch})
	stats.Record(Outcome{Status: OutcomeSkipped, Reason: SkipNoMatch})
	stats.Record(Outcome{Status: OutcomeFailed})

	if stats.Processed != 4 || stats.Attached != 1 || stats.Skipped != 2 || stats.Failed != 1 {
		t.Errorf("unexpected aggregate: %+v", stats)
	}
	if stats.ByReason[SkipNoMatch] != 2 {
		t.Errorf("by-reason count = %d, want 2", stats.ByReason[SkipNoMatch])
	}
}
