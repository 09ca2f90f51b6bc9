package file

import (
	"strconv"
	"strings"

	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// NewFake returns a canned, in-memory file library for deterministic
// tests (§4.6 "fake bindings") — no real filesystem I/O occurs.
func NewFake() value.Dispatcher {
	fk := &fake{files: make(map[string][]byte), dirs: map[string]bool{"/": true}}
	return &library.Table{Name: "file", Methods: map[string]library.Method{
		"read":        fk.read,
		"read_binary": fk.readBinary,
		"write":       fk.write,
		"append":      fk.appendFile,
		"copy":        fk.copyFile,
		"move":        fk.move,
		"remove":      fk.remove,
		"exists":      fk.exists,
		"is_file":     fk.isFile,
		"is_dir":      fk.isDir,
		"mkdir":       fk.mkdir,
		"parent_dir":  fk.parentDir,
		"pwd":         fk.pwd,
		"replace":     fk.replace,
		"replace_all": fk.replaceAll,
		"temp_file":   fk.tempFile,
	}}
}

type fake struct {
	files map[string][]byte
	dirs  map[string]bool
	seq   int
}

func notFound(path string) error { return errNotFoundFmt(path) }

func (fk *fake) read(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	path, err := library.Str("read", args[0])
	if err != nil {
		return value.None, err
	}
	b, ok := fk.files[path]
	if !ok {
		return value.None, notFound(path)
	}
	return value.String(string(b)), nil
}

func (fk *fake) readBinary(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	path, err := library.Str("read_binary", args[0])
	if err != nil {
		return value.None, err
	}
	b, ok := fk.files[path]
	if !ok {
		return value.None, notFound(path)
	}
	return value.Bytes(append([]byte(nil), b...)), nil
}

func (fk *fake) write(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	path, err := library.Str("write", args[0])
	if err != nil {
		return value.None, err
	}
	data, err := contentBytes("write", args[1])
	if err != nil {
		return value.None, err
	}
	fk.files[path] = append([]byte(nil), data...)
	return value.None, nil
}

func (fk *fake) appendFile(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	path, err := library.Str("append", args[0])
	if err != nil {
		return value.None, err
	}
	data, err := contentBytes("append", args[1])
	if err != nil {
		return value.None, err
	}
	fk.files[path] = append(fk.files[path], data...)
	return value.None, nil
}

func (fk *fake) copyFile(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	src, _ := library.Str("copy", args[0])
	dst, _ := library.Str("copy", args[1])
	b, ok := fk.files[src]
	if !ok {
		return value.None, notFound(src)
	}
	fk.files[dst] = append([]byte(nil), b...)
	return value.None, nil
}

func (fk *fake) move(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	src, _ := library.Str("move", args[0])
	dst, _ := library.Str("move", args[1])
	b, ok := fk.files[src]
	if !ok {
		return value.None, notFound(src)
	}
	fk.files[dst] = b
	delete(fk.files, src)
	return value.None, nil
}

func (fk *fake) remove(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	path, _ := library.Str("remove", args[0])
	delete(fk.files, path)
	delete(fk.dirs, path)
	return value.None, nil
}

func (fk *fake) exists(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	path, _ := library.Str("exists", args[0])
	_, isFile := fk.files[path]
	_, isDir := fk.dirs[path]
	return value.Bool(isFile || isDir), nil
}

func (fk *fake) isFile(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	path, _ := library.Str("is_file", args[0])
	_, ok := fk.files[path]
	return value.Bool(ok), nil
}

func (fk *fake) isDir(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	path, _ := library.Str("is_dir", args[0])
	return value.Bool(fk.dirs[path]), nil
}

func (fk *fake) mkdir(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	path, _ := library.Str("mkdir", args[0])
	fk.dirs[path] = true
	return value.None, nil
}

func (fk *fake) parentDir(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	path, _ := library.Str("parent_dir", args[0])
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return value.String("/"), nil
	}
	return value.String(path[:i]), nil
}

func (fk *fake) pwd(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	return value.String("/fake/cwd"), nil
}

func (fk *fake) replace(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	return fk.doReplace(args, false)
}

func (fk *fake) replaceAll(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	return fk.doReplace(args, true)
}

func (fk *fake) doReplace(args []value.Value, all bool) (value.Value, error) {
	path, _ := library.Str("replace", args[0])
	pattern, _ := library.Str("replace", args[1])
	repl, _ := library.Str("replace", args[2])
	b, ok := fk.files[path]
	if !ok {
		return value.None, notFound(path)
	}
	s := string(b)
	if all {
		s = strings.ReplaceAll(s, pattern, repl)
	} else {
		s = strings.Replace(s, pattern, repl, 1)
	}
	fk.files[path] = []byte(s)
	return value.None, nil
}

func (fk *fake) tempFile(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	fk.seq++
	path := "/fake/tmp/file" + strconv.Itoa(fk.seq)
	fk.files[path] = nil
	return value.String(path), nil
}

type notFoundErr struct{ path string }

func (e notFoundErr) Error() string { return "no such file or directory: " + e.path }

func errNotFoundFmt(path string) error { return notFoundErr{path: path} }
