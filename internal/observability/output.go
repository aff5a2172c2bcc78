package observability

import "os"

var defaultOutput = os.Stderr
