package ptitest

import (
	"os"
	"strings"
	"sync"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
	"github.com/spf13/afero"
)

func ResetAppFs() {
	// Reset the AppFs to the original filesystem
	file.AppFs = afero.NewOsFs()
}

// UseMemFs swaps AppFs for an in-memory filesystem until the test ends.
func UseMemFs(t interface{ Cleanup(func()) }) afero.Fs {
	file.AppFs = afero.NewMemMapFs()
	t.Cleanup(ResetAppFs)
	return file.AppFs
}

// OwnerFs records every Chown so tests can assert on ownership handoff.
type OwnerFs struct {
	afero.Fs
	mu     sync.Mutex
	Owners map[string]file.Owner
}

func NewOwnerFs(base afero.Fs) *OwnerFs {
	return &OwnerFs{Fs: base, Owners: map[string]file.Owner{}}
}

func (o *OwnerFs) Chown(name string, uid, gid int) error {
	o.mu.Lock()
	o.Owners[name] = file.Owner{Uid: uid, Gid: gid}
	o.mu.Unlock()
	return o.Fs.Chown(name, uid, gid)
}

func (o *OwnerFs) OwnerOf(name string) (file.Owner, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	owner, ok := o.Owners[name]
	return owner, ok
}

// DenyFs refuses writes below any of the Denied prefixes.
type DenyFs struct {
	afero.Fs
	Denied []string
}

func (d *DenyFs) denied(name string) error {
	for _, prefix := range d.Denied {
		if strings.HasPrefix(name, prefix) {
			return &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
		}
	}
	return nil
}

func (d *DenyFs) Create(name string) (afero.File, error) {
	if err := d.denied(name); err != nil {
		return nil, err
	}
	return d.Fs.Create(name)
}

func (d *DenyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0 {
		if err := d.denied(name); err != nil {
			return nil, err
		}
	}
	return d.Fs.OpenFile(name, flag, perm)
}

func (d *DenyFs) MkdirAll(path string, perm os.FileMode) error {
	if err := d.denied(path); err != nil {
		return err
	}
	return d.Fs.MkdirAll(path, perm)
}
