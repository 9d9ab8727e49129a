package models

// Attachment holds the three co-varying fields of a record's binary
// attachment. Blob is a local data URI present only while the attachment is
// unsynced; URL and Path are set once the blob store accepted an upload
// (Path is the key needed to issue a delete).
type Attachment struct {
	Blob string `json:"blob,omitempty"`
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"`
}

// HasBlob reports whether a local, not-yet-uploaded blob is present.
func (a Attachment) HasBlob() bool { return a.Blob != "" }

// Uploaded reports whether a remote copy of the attachment exists.
func (a Attachment) Uploaded() bool { return a.Path != "" }
