package internal

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	version  = "0.3.0-dev"
	revision = "$Format:%h$"
)

type Semver struct {
	major, minor, patch uint64
	preRelease          string
}

func (v *Semver) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
	if v.preRelease != "" {
		s += "-" + v.preRelease
	}
	return s
}

// Parse reads "major[.minor[.patch]][-pre][+build]"; the build part is dropped.
// It returns nil for malformed input.
func Parse(vs string) *Semver {
	if i := strings.Index(vs, "+"); i >= 0 {
		vs = vs[:i]
	}
	var pre string
	if i := strings.Index(vs, "-"); i >= 0 {
		vs, pre = vs[:i], vs[i+1:]
	}
	parts := strings.Split(vs, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return nil
	}
	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil
		}
		nums[i] = n
	}
	return &Semver{major: nums[0], minor: nums[1], patch: nums[2], preRelease: pre}
}

// Version returns the normalized build version with its git revision.
func Version() string {
	v := Parse(version)
	if v == nil {
		return version
	}
	if strings.HasPrefix(revision, "$Format") {
		return v.String()
	}
	return fmt.Sprintf("%s+%s", v, revision)
}
