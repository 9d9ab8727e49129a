package sync

import "github.com/josepatrial/studioapviagem-sub000/internal/models"

// attachmentPlan is the single upload-or-delete decision made for a record
// in one reconciliation pass.
//
// Upload means a new local blob must be shipped before the record write.
// OldPath, when set, is deleted only after the record's remote write and
// local bookkeeping succeed, so a failed write leaves the previous
// attachment intact rather than orphaning the reference.
type attachmentPlan struct {
	Upload  bool
	Clear   bool
	OldPath string
}

// planAttachment inspects the three co-varying attachment fields and picks
// the action for this pass.
//
// Conventions enforced by the UI write path: capturing a new image sets
// Blob; removing an attachment clears Blob and URL but keeps Path so the
// engine still knows which object to delete.
func planAttachment(att models.Attachment) attachmentPlan {
	switch {
	case att.HasBlob():
		plan := attachmentPlan{Upload: true}
		if att.Uploaded() {
			plan.OldPath = att.Path
		}
		return plan
	case att.Uploaded() && att.URL == "":
		// Removed by the user: null out url/path remotely, delete the blob
		// once the record write has gone through.
		return attachmentPlan{Clear: true, OldPath: att.Path}
	default:
		return attachmentPlan{}
	}
}
