package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/homecare-backend/internal/logger"
)

// SafeGo запускает горутину с перехватом panic в общий лог.
func SafeGo(fn func()) {
	go func() {
		defer logPanic()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и перехватом panic.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer logPanic()
		fn(ctx)
	}()
}

func logPanic() {
	r := recover()
	if r == nil {
		return
	}
	log := logger.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("stack", string(debug.Stack())).Errorf("panic в горутине: %v", r)
}
