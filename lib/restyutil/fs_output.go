package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput dumps raw fetched documents to a directory, one
// file per parcel, so failed extractions can be replayed offline.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) FilesystemOutput {
	os.RemoveAll(dir)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		panic(err)
	}
	return FilesystemOutput{directory: dir}
}

func (o FilesystemOutput) Write(id string, contents []byte) {
	err := os.WriteFile(filepath.Join(o.directory, id), contents, 0600)
	if err != nil {
		slog.Warn("failed to write debug artifact", "id", id, "err", err)
	}
}
