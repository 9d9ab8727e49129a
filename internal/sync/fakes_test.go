package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/josepatrial/studioapviagem-sub000/internal/remote"
)

// fakeRemote is an in-memory remote store with per-key failure injection.
type remoteDoc struct {
	fields    map[string]any
	updatedAt time.Time
}

type fakeRemote struct {
	seq  int
	docs map[string]map[string]remoteDoc // collection -> remote id -> doc

	// rejectCreateKeys fails Create for the given idempotency keys.
	rejectCreateKeys map[string]bool
	// rejectIDs fails Update/Delete for the given remote ids.
	rejectIDs map[string]bool
	// queryErr fails every Query when set.
	queryErr error

	createCalls int
	updateCalls int
	deleteCalls int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		docs:             map[string]map[string]remoteDoc{},
		rejectCreateKeys: map[string]bool{},
		rejectIDs:        map[string]bool{},
	}
}

func (f *fakeRemote) collection(name string) map[string]remoteDoc {
	if f.docs[name] == nil {
		f.docs[name] = map[string]remoteDoc{}
	}
	return f.docs[name]
}

func (f *fakeRemote) Create(ctx context.Context, collection string, payload map[string]any, idempotencyKey string) (string, error) {
	f.createCalls++
	if f.rejectCreateKeys[idempotencyKey] {
		return "", fmt.Errorf("create rejected")
	}
	f.seq++
	id := fmt.Sprintf("srv-%d", f.seq)
	f.collection(collection)[id] = remoteDoc{fields: payload, updatedAt: time.Now().UTC()}
	return id, nil
}

func (f *fakeRemote) Update(ctx context.Context, collection, remoteID string, payload map[string]any) error {
	f.updateCalls++
	if f.rejectIDs[remoteID] {
		return fmt.Errorf("update rejected")
	}
	f.collection(collection)[remoteID] = remoteDoc{fields: payload, updatedAt: time.Now().UTC()}
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, collection, remoteID string) error {
	f.deleteCalls++
	if f.rejectIDs[remoteID] {
		return fmt.Errorf("delete rejected")
	}
	delete(f.collection(collection), remoteID)
	return nil
}

func (f *fakeRemote) Query(ctx context.Context, collection string, filter remote.Filter) ([]remote.Record, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var result []remote.Record
	for id, doc := range f.collection(collection) {
		if filter.OwnerID != "" {
			if owner, _ := doc.fields["ownerId"].(string); owner != filter.OwnerID {
				continue
			}
		}
		fields := make(map[string]any, len(doc.fields))
		for k, v := range doc.fields {
			fields[k] = v
		}
		result = append(result, remote.Record{ID: id, UpdatedAt: doc.updatedAt, Fields: fields})
	}
	return result, nil
}

// payload returns the last payload written for a remote id.
func (f *fakeRemote) payload(collection, remoteID string) map[string]any {
	return f.collection(collection)[remoteID].fields
}

// fakeBlob is an in-memory blob store.
type fakeBlob struct {
	seq        int
	objects    map[string]string // path -> blob
	failUpload bool
	deleted    []string
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{objects: map[string]string{}}
}

func (f *fakeBlob) Upload(ctx context.Context, dataURI, folder string) (string, string, error) {
	if f.failUpload {
		return "", "", fmt.Errorf("upload rejected")
	}
	f.seq++
	path := fmt.Sprintf("%s/obj-%d", folder, f.seq)
	f.objects[path] = dataURI
	return "https://blobs.local/" + path, path, nil
}

func (f *fakeBlob) Delete(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	delete(f.objects, path)
	return nil
}

func (f *fakeBlob) has(path string) bool {
	_, ok := f.objects[path]
	return ok
}

// fakeIdentity satisfies identity.Provider for engine tests.
type fakeIdentity struct {
	subject       string
	elevated      bool
	authenticated bool
	refreshErr    error
}

func (f *fakeIdentity) SubjectID() string   { return f.subject }
func (f *fakeIdentity) Elevated() bool      { return f.elevated }
func (f *fakeIdentity) Authenticated() bool { return f.authenticated }
func (f *fakeIdentity) Refresh(ctx context.Context) error { return f.refreshErr }
func (f *fakeIdentity) Token(ctx context.Context) (string, error) {
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return "token", nil
}

// fakeProber reports a fixed connectivity state.
type fakeProber struct {
	online bool
}

func (f *fakeProber) Online(ctx context.Context) bool { return f.online }
