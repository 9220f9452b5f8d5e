package ext

import (
	"runtime/debug"

	"github.com/yola1107/cards56/library/zlog"
)

func RecoverFromError(cb func(e any)) {
	if e := recover(); e != nil {
		zlog.Errorf("Recover => %v\n%s\n", e, debug.Stack())
		if cb != nil {
			cb(e)
		}
	}
}
