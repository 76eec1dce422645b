package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/pure-golang/webcore/logger"
)

const internalErrorBody = `{"error":"Internal server error"}` + "\n"

// Recovery recovers panic and logs it on ERROR level with the stack.
// A JSON 500 is returned unless the handler already sent its status.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw, ok := w.(*statefulRespWriter)
		if !ok {
			srw = newStatefulRespWriter(w)
		}

		defer func() {
			err := recover()
			if err == nil {
				return
			}
			// http.ErrAbortHandler is how handlers abort on purpose
			if err == http.ErrAbortHandler {
				panic(err)
			}

			logger.FromContext(r.Context()).
				With("err", err).
				With("stack", stackLines(debug.Stack())).
				Error("Panic recovered from handler")

			if srw.Written() {
				return
			}
			srw.Header().Set("Content-Type", "application/json")
			srw.WriteHeader(http.StatusInternalServerError)
			_, _ = srw.Write([]byte(internalErrorBody))
		}()

		next.ServeHTTP(srw, r)
	})
}

func stackLines(raw []byte) []string {
	var stack []string
	for _, line := range strings.Split(strings.ReplaceAll(string(raw), "\t", ""), "\n") {
		if line != "" {
			stack = append(stack, line)
		}
	}
	return stack
}
