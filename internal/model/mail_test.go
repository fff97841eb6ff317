package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceNum(t *testing.T) {
	assert.Equal(t, 45, (&MailDocument{SequenceID: "45"}).SequenceNum())
	assert.Equal(t, 12, (&MailDocument{SequenceID: "12/A"}).SequenceNum())
	assert.Equal(t, 307, (&MailDocument{SequenceID: "No. 3-07"}).SequenceNum())
	assert.Equal(t, 0, (&MailDocument{SequenceID: "draft"}).SequenceNum())
	assert.Equal(t, 0, (&MailDocument{}).SequenceNum())
}

func TestDataDerivedFieldsWinOverLegacyColumns(t *testing.T) {
	// A legacy column named "id" must not shadow the composite identity.
	doc := &MailDocument{
		ID:         "2026_45",
		Year:       2026,
		SequenceID: "45",
		Fields: map[string]any{
			"id":      "legacy-row-7",
			"PERIHAL": "Undangan Rapat",
		},
	}

	data := doc.Data()
	assert.Equal(t, "2026_45", data["id"])
	assert.Equal(t, 2026, data["year"])
	assert.Equal(t, "45", data["sequenceId"])
	assert.Equal(t, "Undangan Rapat", data["PERIHAL"])
	assert.NotContains(t, data, "attachments")
}

func TestDataIncludesAttachments(t *testing.T) {
	doc := &MailDocument{
		ID:         "2026_45",
		Year:       2026,
		SequenceID: "45",
		Attachments: []Attachment{
			{FileName: "scan.pdf", DriveFileID: "abc", DriveViewLink: "https://drive.google.com/file/d/abc/view"},
		},
	}

	data := doc.Data()
	atts, ok := data["attachments"].([]map[string]any)
	assert.True(t, ok)
	assert.Len(t, atts, 1)
	assert.Equal(t, "scan.pdf", atts[0]["fileName"])
	assert.Equal(t, "abc", atts[0]["driveFileId"])
}

func TestGetString(t *testing.T) {
	record := LegacyRecord{
		Columns: []string{"NO URUT", "PERIHAL", "KOSONG"},
		Values: map[string]any{
			"NO URUT": 45,
			"PERIHAL": "  Undangan  ",
			"KOSONG":  nil,
		},
	}

	assert.Equal(t, "45", record.GetString("NO URUT"))
	assert.Equal(t, "Undangan", record.GetString("PERIHAL"))
	assert.Equal(t, "", record.GetString("KOSONG"))
	assert.Equal(t, "", record.GetString("MISSING"))
}
