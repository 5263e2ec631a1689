package registry

import (
	"io"
	"io/ioutil"

	"github.com/pacco-io/pacco/settings"
	"github.com/pacco-io/pacco/storage"
)

// Binary is a transient handle over one stored payload, scoped to the
// storage entry its assignment resolved to. Dropping the handle has no
// effect on storage; only Registry.RemoveBinary deletes anything.
type Binary struct {
	// Assignment this binary is addressed by
	Assignment settings.Assignment

	store storage.Backend
}

// Upload replaces the stored payload with the bytes read from source.
// Last write wins; there is no payload history.
func (b *Binary) Upload(source io.Reader) error {
	data, err := ioutil.ReadAll(source)
	if err != nil {
		return err
	}
	return b.store.ReplacePayload(data)
}

// Download writes the stored payload to dest, failing with
// storage.ErrNotFound when nothing was ever uploaded
func (b *Binary) Download(dest io.Writer) error {
	data, err := b.store.FetchPayload()
	if err != nil {
		return err
	}
	_, err = dest.Write(data)
	return err
}
