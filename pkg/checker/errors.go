package checker

import "errors"

var (
	errUnsupportedProtocol = errors.New("unsupported protocol")
	errProbeWedged         = errors.New("probe did not return before its deadline")
)
