// Package file implements the file standard library (§4.7): filesystem
// access wrapping os/io, plus regexp for replace/replace_all on a file's
// bytes. Grounded on the teacher's plain os/io wrapper style (no fancy
// vfs abstraction) seen throughout runtime/executor's file-staging helpers.
package file

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// New returns the real file library, backed by the host filesystem.
func New(log *slog.Logger) value.Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	f := &impl{log: log}
	return &library.Table{Name: "file", Methods: map[string]library.Method{
		"read":        f.read,
		"read_binary": f.readBinary,
		"write":       f.write,
		"append":      f.appendFile,
		"copy":        f.copyFile,
		"move":        f.move,
		"remove":      f.remove,
		"exists":      f.exists,
		"is_file":     f.isFile,
		"is_dir":      f.isDir,
		"mkdir":       f.mkdir,
		"parent_dir":  f.parentDir,
		"pwd":         f.pwd,
		"replace":     f.replace,
		"replace_all": f.replaceAll,
		"temp_file":   f.tempFile,
	}}
}

type impl struct{ log *slog.Logger }

func (f *impl) read(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("read", args, 1); err != nil {
		return value.None, err
	}
	path, err := library.Str("read", args[0])
	if err != nil {
		return value.None, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return value.None, err
	}
	return value.String(string(b)), nil
}

func (f *impl) readBinary(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("read_binary", args, 1); err != nil {
		return value.None, err
	}
	path, err := library.Str("read_binary", args[0])
	if err != nil {
		return value.None, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return value.None, err
	}
	return value.Bytes(b), nil
}

func (f *impl) write(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("write", args, 2); err != nil {
		return value.None, err
	}
	path, err := library.Str("write", args[0])
	if err != nil {
		return value.None, err
	}
	data, err := contentBytes("write", args[1])
	if err != nil {
		return value.None, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func (f *impl) appendFile(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("append", args, 2); err != nil {
		return value.None, err
	}
	path, err := library.Str("append", args[0])
	if err != nil {
		return value.None, err
	}
	data, err := contentBytes("append", args[1])
	if err != nil {
		return value.None, err
	}
	out, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return value.None, err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func (f *impl) copyFile(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("copy", args, 2); err != nil {
		return value.None, err
	}
	src, err := library.Str("copy", args[0])
	if err != nil {
		return value.None, err
	}
	dst, err := library.Str("copy", args[1])
	if err != nil {
		return value.None, err
	}
	in, err := os.Open(src)
	if err != nil {
		return value.None, err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return value.None, err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func (f *impl) move(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("move", args, 2); err != nil {
		return value.None, err
	}
	src, err := library.Str("move", args[0])
	if err != nil {
		return value.None, err
	}
	dst, err := library.Str("move", args[1])
	if err != nil {
		return value.None, err
	}
	if err := os.Rename(src, dst); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func (f *impl) remove(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("remove", args, 1); err != nil {
		return value.None, err
	}
	path, err := library.Str("remove", args[0])
	if err != nil {
		return value.None, err
	}
	if err := os.RemoveAll(path); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func (f *impl) exists(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("exists", args, 1); err != nil {
		return value.None, err
	}
	path, err := library.Str("exists", args[0])
	if err != nil {
		return value.None, err
	}
	_, statErr := os.Stat(path)
	return value.Bool(statErr == nil), nil
}

// isFile/isDir follow the original's stat (symlink-following), not lstat
// (SPEC_FULL.md §D).
func (f *impl) isFile(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("is_file", args, 1); err != nil {
		return value.None, err
	}
	path, err := library.Str("is_file", args[0])
	if err != nil {
		return value.None, err
	}
	st, err := os.Stat(path)
	return value.Bool(err == nil && !st.IsDir()), nil
}

func (f *impl) isDir(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("is_dir", args, 1); err != nil {
		return value.None, err
	}
	path, err := library.Str("is_dir", args[0])
	if err != nil {
		return value.None, err
	}
	st, err := os.Stat(path)
	return value.Bool(err == nil && st.IsDir()), nil
}

func (f *impl) mkdir(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.ArityRange("mkdir", args, 1, 1); err != nil {
		return value.None, err
	}
	path, err := library.Str("mkdir", args[0])
	if err != nil {
		return value.None, err
	}
	parent, err := library.OptBool("mkdir", library.Kwarg(kwargs, "parent"), false)
	if err != nil {
		return value.None, err
	}
	if parent {
		err = os.MkdirAll(path, 0o755)
	} else {
		err = os.Mkdir(path, 0o755)
	}
	if err != nil {
		return value.None, err
	}
	return value.None, nil
}

func (f *impl) parentDir(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("parent_dir", args, 1); err != nil {
		return value.None, err
	}
	path, err := library.Str("parent_dir", args[0])
	if err != nil {
		return value.None, err
	}
	return value.String(filepath.Dir(path)), nil
}

func (f *impl) pwd(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("pwd", args, 0); err != nil {
		return value.None, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return value.None, err
	}
	return value.String(wd), nil
}

func (f *impl) replace(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	return f.doReplace("replace", args, false)
}

func (f *impl) replaceAll(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	return f.doReplace("replace_all", args, true)
}

func (f *impl) doReplace(name string, args []value.Value, all bool) (value.Value, error) {
	if err := library.Arity(name, args, 3); err != nil {
		return value.None, err
	}
	path, err := library.Str(name, args[0])
	if err != nil {
		return value.None, err
	}
	pattern, err := library.Str(name, args[1])
	if err != nil {
		return value.None, err
	}
	replacement, err := library.Str(name, args[2])
	if err != nil {
		return value.None, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return value.None, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return value.None, err
	}
	var out []byte
	if all {
		out = re.ReplaceAll(b, []byte(replacement))
	} else {
		out = replaceFirst(re, b, []byte(replacement))
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func replaceFirst(re *regexp.Regexp, b, repl []byte) []byte {
	loc := re.FindIndex(b)
	if loc == nil {
		return b
	}
	out := make([]byte, 0, len(b))
	out = append(out, b[:loc[0]]...)
	out = append(out, repl...)
	out = append(out, b[loc[1]:]...)
	return out
}

func (f *impl) tempFile(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.ArityRange("temp_file", args, 0, 0); err != nil {
		return value.None, err
	}
	name, err := library.OptString("temp_file", library.Kwarg(kwargs, "name"), "")
	if err != nil {
		return value.None, err
	}
	pattern := "eldritch-*"
	if name != "" {
		pattern = name + "-*"
	}
	tf, err := os.CreateTemp("", pattern)
	if err != nil {
		return value.None, err
	}
	path := tf.Name()
	tf.Close()
	return value.String(path), nil
}

func contentBytes(fn string, v value.Value) ([]byte, error) {
	switch v.Kind() {
	case value.KindBytes:
		return v.AsBytes(), nil
	case value.KindString:
		return []byte(v.AsString()), nil
	}
	return nil, library.MethodError(diag.TypeError, fn+"() expected string, got '"+v.Kind().String()+"'")
}
