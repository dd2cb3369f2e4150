// Package callsite resolves caller frames and type names for configuration access diagnostics.
package callsite

import (
	"fmt"
	"path"
	"runtime"
	"strings"
)

// Frame identifies the code location that read a configuration key.
type Frame struct {
	Func string
	File string
	Line int
}

// Caller returns the frame skip levels above the caller of Caller.
// Caller(0) describes the function that invoked Caller.
func Caller(skip int) Frame {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Frame{Func: "unknown", File: "unknown"}
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return Frame{Func: "unknown", File: "unknown"}
	}
	return Frame{
		Func: ShortFuncName(fn.Name()),
		File: ShortFileName(file),
		Line: line,
	}
}

// TypeName returns the package-qualified dynamic type name of v, e.g. "config.EnvVarProvider".
func TypeName(v any) string {
	return fmt.Sprintf("%T", v)
}

// ShortFuncName trims the import path from a qualified function name,
// keeping "package.Func".
func ShortFuncName(name string) string {
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		return name[idx+1:]
	}
	return name
}

// ShortFileName keeps only the parent directory and the file name ("dir/file.go").
func ShortFileName(file string) string {
	dir, fileName := path.Split(file)
	return path.Base(path.Clean(dir)) + "/" + fileName
}
