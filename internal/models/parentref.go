package models

import (
	"encoding/json"
	"errors"
)

var ErrAmbiguousRef = errors.New("parent ref must be local or remote, not both")

// ParentRef identifies a child's parent record as exactly one of a local id
// (parent not yet synced) or a remote id (parent known to the server).
// The zero value means "no parent".
//
// Locally it serializes as {"local":"..."} or {"remote":"..."}; it is never
// sent to the remote store — the push engine substitutes the plain remote id
// into the outgoing payload instead.
type ParentRef struct {
	local  string
	remote string
}

// LocalRef references a parent by its local id.
func LocalRef(localID string) ParentRef { return ParentRef{local: localID} }

// RemoteRef references a parent by its server-assigned id.
func RemoteRef(remoteID string) ParentRef { return ParentRef{remote: remoteID} }

// Local returns the local id and true if the ref is local.
func (r ParentRef) Local() (string, bool) { return r.local, r.local != "" }

// Remote returns the remote id and true if the ref is remote.
func (r ParentRef) Remote() (string, bool) { return r.remote, r.remote != "" }

// IsZero reports whether the ref points at nothing.
func (r ParentRef) IsZero() bool { return r.local == "" && r.remote == "" }

type parentRefJSON struct {
	Local  string `json:"local,omitempty"`
	Remote string `json:"remote,omitempty"`
}

func (r ParentRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(parentRefJSON{Local: r.local, Remote: r.remote})
}

func (r *ParentRef) UnmarshalJSON(b []byte) error {
	var v parentRefJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.Local != "" && v.Remote != "" {
		return ErrAmbiguousRef
	}
	r.local = v.Local
	r.remote = v.Remote
	return nil
}
