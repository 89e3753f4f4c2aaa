// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import (
	"os"

	"github.com/saferwall/clrmeta/log"
)

// Options configures a Database or Loader. The zero value means
// default behavior; there are no package-level globals (spec.md §9's
// note against process-wide static state carries into the ambient
// configuration layer too), the same shape as the adapter's
// peloader.Options passed to peloader.New.
type Options struct {
	// Logger receives Warn/Error entries for corrupt-table and
	// resolver-miss conditions before the triggering error is
	// returned, mirroring peloader.File's logging-then-returning
	// pattern. A nil Logger gets a filtered stdout logger.
	Logger log.Logger
}

func newLogger(opts *Options) *log.Helper {
	if opts == nil || opts.Logger == nil {
		stdLogger := log.NewStdLogger(os.Stdout)
		return log.NewHelper(log.NewFilter(stdLogger, log.FilterLevel(log.LevelError)))
	}
	return log.NewHelper(opts.Logger)
}
