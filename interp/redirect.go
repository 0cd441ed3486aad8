package interp

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/sushlang/sush/expand"
	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

// savedFD backs up one OS file descriptor the no-fork path is about to
// clobber, so it can put it back once the redirected command finishes —
// grounded on original_source/src/elements/io.rs's backup/replace pair,
// translated to golang.org/x/sys/unix's Dup2/FcntlInt the way the
// teacher's interp/os_unix.go reaches for the same package for this
// family of descriptor operations.
type savedFD struct {
	target int
	backup int
}

// connectRedirects applies every redirect directly to the current
// process's descriptor table via dup2, after first saving whichever
// descriptor each one is about to overwrite with F_DUPFD_CLOEXEC. This is
// the path a builtin or a compound command runs under when nothing
// forces a fork (spec.md §4.6, §9): rather than building a child process
// with its own descriptor table, the current process's fds 0/1/2/... are
// temporarily repointed and restored afterward by restoreRedirects.
func connectRedirects(core *shellstate.ShellCore, cfg *expand.Config, redirs []*syntax.Redirect) ([]savedFD, error) {
	var saved []savedFD
	for _, rd := range redirs {
		s, err := connectOne(core, cfg, rd)
		if err != nil {
			restoreRedirects(saved)
			return nil, err
		}
		saved = append(saved, s...)
	}
	return saved, nil
}

func connectOne(core *shellstate.ShellCore, cfg *expand.Config, rd *syntax.Redirect) ([]savedFD, error) {
	switch rd.Op {
	case syntax.RedirDupOut, syntax.RedirDupIn:
		target := targetFD(rd)
		bak, err := backupFD(target)
		if err != nil {
			return nil, err
		}
		srcFD, err := strconv.Atoi(rd.Word.Raw)
		if err != nil || srcFD < 0 {
			return []savedFD{bak}, nil // "N>&-" style close-only forms (parsed as fd -1) fall through as a no-op
		}
		if err := unix.Dup2(srcFD, target); err != nil {
			return nil, err
		}
		return []savedFD{bak}, nil
	case syntax.RedirOutErr:
		path, err := wordValue(core, cfg, rd.Word)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		bak1, err := backupFD(1)
		if err != nil {
			return nil, err
		}
		if err := unix.Dup2(int(f.Fd()), 1); err != nil {
			return nil, err
		}
		bak2, err := backupFD(2)
		if err != nil {
			return []savedFD{bak1}, err
		}
		if err := unix.Dup2(int(f.Fd()), 2); err != nil {
			return []savedFD{bak1, bak2}, err
		}
		return []savedFD{bak1, bak2}, nil
	default:
		target := targetFD(rd)
		bak, err := backupFD(target)
		if err != nil {
			return nil, err
		}
		f, err := openRedirect(core, cfg, rd)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := unix.Dup2(int(f.Fd()), target); err != nil {
			return nil, err
		}
		return []savedFD{bak}, nil
	}
}

func backupFD(fd int) (savedFD, error) {
	bak, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 10)
	if err != nil {
		// fd was never open; nothing to back up, nothing to restore.
		return savedFD{target: fd, backup: -1}, nil
	}
	return savedFD{target: fd, backup: bak}, nil
}

// restoreRedirects undoes connectRedirects' changes in reverse order, the
// way nested redirects must unwind (spec.md §4.5).
func restoreRedirects(saved []savedFD) {
	for i := len(saved) - 1; i >= 0; i-- {
		s := saved[i]
		if s.backup < 0 {
			unix.Close(s.target)
			continue
		}
		unix.Dup2(s.backup, s.target)
		unix.Close(s.backup)
	}
}

func targetFD(rd *syntax.Redirect) int {
	if rd.HasFD {
		return rd.TargetFD
	}
	switch rd.Op {
	case syntax.RedirIn, syntax.RedirHeredoc, syntax.RedirHeredocTabs, syntax.RedirHereString, syntax.RedirDupIn:
		return 0
	default:
		return 1
	}
}

// openRedirect resolves a Redirect to the *os.File it denotes: opening a
// path for </>/>>, or materializing a here-document/here-string body
// through an anonymous pipe so its reader sees an ordinary fd.
func openRedirect(core *shellstate.ShellCore, cfg *expand.Config, rd *syntax.Redirect) (*os.File, error) {
	switch rd.Op {
	case syntax.RedirIn:
		path, err := wordValue(core, cfg, rd.Word)
		if err != nil {
			return nil, err
		}
		return os.Open(path)
	case syntax.RedirOut:
		path, err := wordValue(core, cfg, rd.Word)
		if err != nil {
			return nil, err
		}
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	case syntax.RedirAppend:
		path, err := wordValue(core, cfg, rd.Word)
		if err != nil {
			return nil, err
		}
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	case syntax.RedirHereString:
		val, err := wordValue(core, cfg, rd.Word)
		if err != nil {
			return nil, err
		}
		return pipeWithContent(val + "\n")
	case syntax.RedirHeredoc, syntax.RedirHeredocTabs:
		return pipeWithContent(rd.HeredocBody)
	default:
		path, err := wordValue(core, cfg, rd.Word)
		if err != nil {
			return nil, err
		}
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	}
}

// pipeWithContent writes body into an anonymous pipe's write end on a
// goroutine and returns the read end, so a heredoc/here-string body reads
// exactly like a regular file without ever touching disk.
func pipeWithContent(body string) (*os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	go func() {
		defer w.Close()
		w.WriteString(body)
	}()
	return r, nil
}

func wordValue(core *shellstate.ShellCore, cfg *expand.Config, w *syntax.Word) (string, error) {
	return expand.ValueOf(core, cfg, w)
}
