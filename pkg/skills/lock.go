package skills

import (
	"encoding/json"
	"os"
	"syscall"
	"time"

	"github.com/g2-project/g2/pkg/logger"
)

// lockInfo is the JSON payload written into .g2/lock, matching
// original_source's {pid, timestamp} shape.
type lockInfo struct {
	PID       int   `json:"pid"`
	Timestamp int64 `json:"timestamp"`
}

// Unlock releases a lock acquired by Engine.Lock.
type Unlock func() error

// Lock acquires the project's exclusive lock, atomically creating
// .g2/lock. If an existing lock is younger than the configured stale
// window and its recorded PID is still alive, it returns
// KindLockContention. A lock older than the window, or one whose recorded
// PID is no longer running, is treated as abandoned and is broken.
func (e *Engine) Lock() (Unlock, error) {
	path := e.lockPath()

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			info := lockInfo{PID: os.Getpid(), Timestamp: time.Now().Unix()}
			raw, merr := json.Marshal(info)
			if merr != nil {
				f.Close()
				os.Remove(path)
				return nil, newErr(KindIO, "lock").withErr(merr)
			}
			if _, werr := f.Write(raw); werr != nil {
				f.Close()
				os.Remove(path)
				return nil, newErr(KindIO, "lock").withErr(werr)
			}
			f.Close()
			return func() error { return os.Remove(path) }, nil
		}

		if !os.IsExist(err) {
			return nil, newErr(KindIO, "lock").withErr(err)
		}

		stale, rerr := e.lockIsStale(path)
		if rerr != nil {
			return nil, rerr
		}
		if !stale {
			return nil, newErr(KindLockContention, "lock").withPath(path)
		}

		logger.WarnCF("skills", "breaking stale lock", map[string]any{"path": path})
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, newErr(KindIO, "lock").withErr(err)
		}
	}
}

func (e *Engine) lockIsStale(path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, newErr(KindIO, "lock").withErr(err)
	}
	var info lockInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		// Unreadable lock payload: treat as stale rather than wedging forever.
		return true, nil
	}
	if info.PID > 0 && !processAlive(info.PID) {
		return true, nil
	}
	age := time.Since(time.Unix(info.Timestamp, 0))
	return age > e.Config.LockStaleWindow(), nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil
}
