// Package plugs installs the standard plugs. Import it for its side
// effects:
//
//	import _ "github.com/arthur-debert/plugs/pkg/plugs"
package plugs

import (
	_ "github.com/arthur-debert/plugs/pkg/plugs/filter"
	_ "github.com/arthur-debert/plugs/pkg/plugs/sourcemaps"
	_ "github.com/arthur-debert/plugs/pkg/plugs/write"
)
