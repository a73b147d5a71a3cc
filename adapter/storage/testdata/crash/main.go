// Command crash rewrites a file with many lines so that tests can kill it in
// the middle of a crash-safe write.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/vinicius-lino-figueiredo/jsongo/adapter/storage"
)

func main() {
	total := 50000

	var buf bytes.Buffer
	for range total {
		fmt.Fprintf(&buf, "somedata_%s\n", os.Args[1])
	}

	strg := storage.NewStorage()
	if err := strg.CrashSafeWriteFile(os.Args[2], buf.Bytes(), 0o755, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
