package interp

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-shx/shx/errors"
	"github.com/go-shx/shx/internal/env"
	"github.com/go-shx/shx/internal/filepathext"
	"github.com/go-shx/shx/internal/timeext"
)

// builtinFunc is the internal builtin signature. The bool result requests
// termination of the enclosing list, used by exit.
type builtinFunc func(ctx context.Context, r *Runner, io stdio, args []string, prefix map[string]string) (int, bool)

var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		"cd":       builtinCd,
		"echo":     builtinEcho,
		"exit":     builtinExit,
		"sleep":    builtinSleep,
		"test":     builtinTest,
		"export":   builtinExport,
		"unset":    builtinUnset,
		"pwd":      builtinPwd,
		"true":     builtinTrue,
		"false":    builtinFalse,
		"cat":      builtinCat,
		"printenv": builtinPrintenv,
		"which":    builtinWhich,
	}
}

func builtinCd(_ context.Context, r *Runner, io stdio, args []string, _ map[string]string) (int, bool) {
	var target string
	switch len(args) {
	case 0:
		home, ok := r.Lookup("HOME")
		if !ok || home == "" {
			home, ok = r.Lookup("USERPROFILE")
		}
		if !ok || home == "" {
			fmt.Fprintln(io.err, "cd: HOME not set")
			return 1, false
		}
		target = home
	case 1:
		target = args[0]
	default:
		fmt.Fprintln(io.err, "cd: too many arguments")
		return errors.CodeUsage, false
	}

	dir := filepathext.Resolve(r.Dir, target)
	info, err := r.Fs.Stat(dir)
	if err != nil {
		fmt.Fprintf(io.err, "cd: %s: no such file or directory\n", target)
		return 1, false
	}
	if !info.IsDir() {
		fmt.Fprintf(io.err, "cd: %s: not a directory\n", target)
		return 1, false
	}
	r.Dir = dir
	return 0, false
}

// builtinEcho does no flag parsing. Every arg is printed verbatim so that
// quoted values round-trip, including ones that look like flags.
func builtinEcho(_ context.Context, _ *Runner, io stdio, args []string, _ map[string]string) (int, bool) {
	fmt.Fprintln(io.out, strings.Join(args, " "))
	return 0, false
}

func builtinExit(_ context.Context, r *Runner, io stdio, args []string, _ map[string]string) (int, bool) {
	switch len(args) {
	case 0:
		return r.lastCode, true
	case 1:
		code, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(io.err, "exit: %s: numeric argument required\n", args[0])
			return errors.CodeUsage, true
		}
		return code & 0xff, true
	default:
		fmt.Fprintln(io.err, "exit: too many arguments")
		return errors.CodeUsage, false
	}
}

func builtinSleep(ctx context.Context, _ *Runner, io stdio, args []string, _ map[string]string) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintln(io.err, "sleep: expected exactly one duration argument")
		return errors.CodeUsage, false
	}
	d, err := timeext.ParseSleep(args[0])
	if err != nil {
		fmt.Fprintf(io.err, "sleep: %v\n", err)
		return errors.CodeUsage, false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return 0, false
	case <-ctx.Done():
		return errors.CodeTimeout, true
	}
}

// builtinTest implements the subset of test(1) the evaluator supports:
// string equality and inequality, -n/-z, the integer comparisons -eq, -ne,
// -lt, -le, -gt and -ge, negation with a leading !, and the file predicates
// -e, -f and -d resolved against the runner's filesystem.
func builtinTest(_ context.Context, r *Runner, io stdio, args []string, _ map[string]string) (int, bool) {
	ok, err := evalTest(r, args)
	if err != nil {
		fmt.Fprintf(io.err, "test: %v\n", err)
		return errors.CodeUsage, false
	}
	if ok {
		return 0, false
	}
	return 1, false
}

func evalTest(r *Runner, args []string) (bool, error) {
	switch len(args) {
	case 0:
		return false, nil
	case 1:
		return args[0] != "", nil
	case 2:
		switch args[0] {
		case "-n":
			return args[1] != "", nil
		case "-z":
			return args[1] == "", nil
		case "-e":
			_, err := r.Fs.Stat(filepathext.Resolve(r.Dir, args[1]))
			return err == nil, nil
		case "-f":
			info, err := r.Fs.Stat(filepathext.Resolve(r.Dir, args[1]))
			return err == nil && info.Mode().IsRegular(), nil
		case "-d":
			info, err := r.Fs.Stat(filepathext.Resolve(r.Dir, args[1]))
			return err == nil && info.IsDir(), nil
		case "!":
			ok, err := evalTest(r, args[1:])
			return !ok, err
		default:
			return false, fmt.Errorf("unknown operator: %s", args[0])
		}
	case 3:
		switch args[1] {
		case "=", "==":
			return args[0] == args[2], nil
		case "!=":
			return args[0] != args[2], nil
		case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
			a, err := strconv.Atoi(args[0])
			if err != nil {
				return false, fmt.Errorf("integer expression expected: %s", args[0])
			}
			b, err := strconv.Atoi(args[2])
			if err != nil {
				return false, fmt.Errorf("integer expression expected: %s", args[2])
			}
			switch args[1] {
			case "-eq":
				return a == b, nil
			case "-ne":
				return a != b, nil
			case "-lt":
				return a < b, nil
			case "-le":
				return a <= b, nil
			case "-gt":
				return a > b, nil
			default:
				return a >= b, nil
			}
		default:
			return false, fmt.Errorf("unknown operator: %s", args[1])
		}
	default:
		if args[0] == "!" {
			ok, err := evalTest(r, args[1:])
			return !ok, err
		}
		return false, fmt.Errorf("too many arguments")
	}
}

func builtinExport(_ context.Context, r *Runner, io stdio, args []string, _ map[string]string) (int, bool) {
	if len(args) == 0 {
		names := make([]string, 0, len(r.Env))
		for name := range r.Env {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(io.out, "export %s=%s\n", name, r.Env[name])
		}
		return 0, false
	}
	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		if name == "" {
			fmt.Fprintf(io.err, "export: %s: not a valid identifier\n", arg)
			return errors.CodeUsage, false
		}
		if hasValue {
			r.Export(name, value)
			continue
		}
		if v, ok := r.Vars[name]; ok {
			r.Export(name, v)
		}
	}
	return 0, false
}

func builtinUnset(_ context.Context, r *Runner, _ stdio, args []string, _ map[string]string) (int, bool) {
	for _, name := range args {
		delete(r.Vars, name)
		delete(r.Env, name)
	}
	return 0, false
}

func builtinPwd(_ context.Context, r *Runner, io stdio, _ []string, _ map[string]string) (int, bool) {
	fmt.Fprintln(io.out, r.Dir)
	return 0, false
}

func builtinTrue(_ context.Context, _ *Runner, _ stdio, _ []string, _ map[string]string) (int, bool) {
	return 0, false
}

func builtinFalse(_ context.Context, _ *Runner, _ stdio, _ []string, _ map[string]string) (int, bool) {
	return 1, false
}

func builtinCat(_ context.Context, r *Runner, sio stdio, args []string, _ map[string]string) (int, bool) {
	if len(args) == 0 {
		if sio.in != nil {
			if _, err := io.Copy(sio.out, sio.in); err != nil {
				fmt.Fprintf(sio.err, "cat: %v\n", err)
				return 1, false
			}
		}
		return 0, false
	}
	code := 0
	for _, arg := range args {
		f, err := r.Fs.Open(filepathext.Resolve(r.Dir, arg))
		if err != nil {
			fmt.Fprintf(sio.err, "cat: %s: no such file or directory\n", arg)
			code = 1
			continue
		}
		_, err = io.Copy(sio.out, f)
		f.Close()
		if err != nil {
			fmt.Fprintf(sio.err, "cat: %s: %v\n", arg, err)
			code = 1
		}
	}
	return code, false
}

func builtinPrintenv(_ context.Context, r *Runner, io stdio, args []string, prefix map[string]string) (int, bool) {
	merged := env.Merge(r.Env, prefix)
	if len(args) == 0 {
		for _, entry := range env.ToList(merged) {
			fmt.Fprintln(io.out, entry)
		}
		return 0, false
	}
	code := 0
	for _, name := range args {
		v, ok := merged[name]
		if !ok {
			code = 1
			continue
		}
		fmt.Fprintln(io.out, v)
	}
	return code, false
}

func builtinWhich(_ context.Context, r *Runner, io stdio, args []string, _ map[string]string) (int, bool) {
	if len(args) == 0 {
		return errors.CodeUsage, false
	}
	code := 0
	for _, name := range args {
		if _, ok := r.Custom[name]; ok {
			fmt.Fprintf(io.out, "%s: registered command\n", name)
			continue
		}
		if _, ok := builtins[name]; ok {
			fmt.Fprintf(io.out, "%s: shell builtin\n", name)
			continue
		}
		path, err := exec.LookPath(name)
		if err != nil {
			fmt.Fprintf(io.err, "which: %s: not found\n", name)
			code = 1
			continue
		}
		fmt.Fprintln(io.out, path)
	}
	return code, false
}
