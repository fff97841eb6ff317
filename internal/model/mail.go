package model

import (
	"regexp"
	"strings"
)

// Attachment is a file stored in Google Drive and linked to a mail document.
type Attachment struct {
	FileName      string `json:"fileName" firestore:"fileName"`
	DriveFileID   string `json:"driveFileId" firestore:"driveFileId"`
	DriveViewLink string `json:"driveViewLink" firestore:"driveViewLink"`
}

// LegacyRecord is one row read from the legacy desktop database: an ordered
// set of column names and their loosely-typed values. It only lives for the
// duration of a sync pass.
type LegacyRecord struct {
	Columns []string
	Values  map[string]any
}

func (r LegacyRecord) Get(column string) (any, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// GetString returns the value of a column rendered as a trimmed string,
// or "" when the column is absent or empty.
func (r LegacyRecord) GetString(column string) string {
	v, ok := r.Values[column]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(ToString(v))
}

// MailDocument is the durable entity in the document store. The identity
// fields are derived by the reconciliation engine; everything else from the
// legacy row is carried verbatim in Fields (the store enforces no schema).
type MailDocument struct {
	ID          string         `json:"id"`
	Year        int            `json:"year"`
	SequenceID  string         `json:"sequenceId"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	Fields      map[string]any `json:"-"`
}

var nonDigits = regexp.MustCompile(`\D`)

// SequenceNum is the numeric form of SequenceID used for ordering, with all
// non-digit characters stripped. Returns 0 when nothing numeric remains.
func (d *MailDocument) SequenceNum() int {
	digits := nonDigits.ReplaceAllString(d.SequenceID, "")
	n := 0
	for _, c := range digits {
		n = n*10 + int(c-'0')
	}
	return n
}

// Data flattens the document into the map committed to the store with merge
// semantics: dynamic legacy fields first, derived fields on top so they can
// never be shadowed by a legacy column of the same name.
func (d *MailDocument) Data() map[string]any {
	data := make(map[string]any, len(d.Fields)+4)
	for k, v := range d.Fields {
		data[k] = v
	}
	data["id"] = d.ID
	data["year"] = d.Year
	data["sequenceId"] = d.SequenceID
	if len(d.Attachments) > 0 {
		atts := make([]map[string]any, 0, len(d.Attachments))
		for _, a := range d.Attachments {
			atts = append(atts, map[string]any{
				"fileName":      a.FileName,
				"driveFileId":   a.DriveFileID,
				"driveViewLink": a.DriveViewLink,
			})
		}
		data["attachments"] = atts
	}
	return data
}

// SyncResult summarizes one reconciliation run.
type SyncResult struct {
	SuccessCount int `json:"successCount"`
	ErrorCount   int `json:"errorCount"`
}
