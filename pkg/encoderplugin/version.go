package encoderplugin

import (
	"fmt"
	"strconv"
	"strings"
)

// MinCompatibleVersion is the oldest plugin protocol the host accepts.
const MinCompatibleVersion = "1.0.0"

// Version is a parsed MAJOR.MINOR.PATCH protocol version.
type Version struct {
	Major, Minor, Patch int
}

// ParseVersion parses a MAJOR.MINOR.PATCH string.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(s), "v"), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q (expected MAJOR.MINOR.PATCH)", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v precedes o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// CheckCompatible returns an error unless a plugin speaking protocol
// version s can serve this host. The major version must match and the
// version must not predate MinCompatibleVersion; newer minor and patch
// versions are accepted.
func CheckCompatible(s string) error {
	pv, err := ParseVersion(s)
	if err != nil {
		return err
	}
	host, _ := ParseVersion(ProtocolVersion)
	minimum, _ := ParseVersion(MinCompatibleVersion)

	if pv.Major != host.Major {
		return fmt.Errorf("incompatible plugin protocol %s, host requires %d.x.x", pv, host.Major)
	}
	if pv.Less(minimum) {
		return fmt.Errorf("plugin protocol %s is too old, minimum is %s", pv, minimum)
	}
	return nil
}
