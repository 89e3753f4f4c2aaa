// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import "fmt"

// Version is an assembly's four-part version number (spec.md §3).
type Version struct {
	Major, Minor, Build, Revision uint16
}

// String renders the version in the conventional major.minor.build.revision form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}
