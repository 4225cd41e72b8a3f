// Package fingerprint computes a semi-stable hardware fingerprint used to
// bind per-user key material to the environment it was created in.
//
// The fingerprint is a small set of tagged component strings (OS account
// name, home directory, operating system, CPU architecture, host name),
// sorted for determinism and hashed with a fast non-cryptographic 64-bit
// hash. The same hash doubles as the seed of the deterministic key
// derivation salt; see Salt.
package fingerprint

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Component tags. A component string is "<tag>:<value>".
const (
	TagUser     = "user"
	TagHome     = "home"
	TagOS       = "os"
	TagArch     = "arch"
	TagComputer = "computer"
)

// componentSep joins the sorted components before hashing.
const componentSep = "||"

// criticalTags are the components whose change means the data was moved to a
// different environment outright, not just benign drift.
var criticalTags = map[string]struct{}{
	TagUser: {},
	TagOS:   {},
	TagArch: {},
}

// Test seams for environment probes.
var (
	currentUser = func() string {
		if u, err := user.Current(); err == nil && u.Username != "" {
			return u.Username
		}
		if v := os.Getenv("USER"); v != "" {
			return v
		}
		if v := os.Getenv("USERNAME"); v != "" {
			return v
		}
		return "unknown_user"
	}
	homeDir = func() string {
		if h, err := os.UserHomeDir(); err == nil && h != "" {
			return h
		}
		return "unknown"
	}
	hostName = func() string {
		if h, err := os.Hostname(); err == nil && h != "" {
			return h
		}
		return "unknown_computer"
	}
)

// Reading is one observation of the environment: the sorted component list
// and its 64-bit hash.
type Reading struct {
	Hash       uint64
	Components []string
}

// Collect gathers the current environment components and hashes them.
func Collect() Reading {
	components := []string{
		TagUser + ":" + currentUser(),
		TagHome + ":" + homeDir(),
		TagOS + ":" + runtime.GOOS,
		TagArch + ":" + runtime.GOARCH,
		TagComputer + ":" + hostName(),
	}
	sort.Strings(components)
	return Reading{Hash: Sum(components), Components: components}
}

// Sum hashes the component strings to a 64-bit fingerprint. The input is
// sorted (copy-on-write) so callers holding unsorted slices get the same
// value.
func Sum(components []string) uint64 {
	sorted := append([]string(nil), components...)
	sort.Strings(sorted)
	return xxhash.Sum64String(strings.Join(sorted, componentSep))
}

// Salt expands the 64-bit fingerprint hash into a deterministic 32-byte key
// derivation salt. The mixing pattern is fixed: changing it would silently
// re-key every existing installation.
func Salt(hash uint64) [32]byte {
	var hb [8]byte
	binary.LittleEndian.PutUint64(hb[:], hash)

	var salt [32]byte
	for i := range salt {
		salt[i] = hb[i%8] ^ byte(i)*17 ^ 0xAA
	}
	return salt
}

// IsCriticalChange reports whether any critical component (user, os, arch)
// differs between the stored and current component sets.
func IsCriticalChange(stored, current []string) bool {
	return !equalStringSets(filterCritical(stored), filterCritical(current))
}

// Diff returns human-readable "tag: old -> new" lines for components whose
// values differ, plus lines for tags present on only one side. Used for
// security audit reporting and drift logging.
func Diff(stored, current []string) []string {
	storedByTag := byTag(stored)
	currentByTag := byTag(current)

	tags := make([]string, 0, len(storedByTag))
	for tag := range storedByTag {
		tags = append(tags, tag)
	}
	for tag := range currentByTag {
		if _, ok := storedByTag[tag]; !ok {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	var changes []string
	for _, tag := range tags {
		old, hasOld := storedByTag[tag]
		cur, hasCur := currentByTag[tag]
		switch {
		case hasOld && hasCur && old != cur:
			changes = append(changes, fmt.Sprintf("%s: %q -> %q", tag, old, cur))
		case hasOld && !hasCur:
			changes = append(changes, fmt.Sprintf("%s: %q -> (missing)", tag, old))
		case !hasOld && hasCur:
			changes = append(changes, fmt.Sprintf("%s: (missing) -> %q", tag, cur))
		}
	}
	return changes
}

func filterCritical(components []string) []string {
	out := make([]string, 0, len(criticalTags))
	for _, c := range components {
		tag, _, ok := strings.Cut(c, ":")
		if !ok {
			continue
		}
		if _, critical := criticalTags[tag]; critical {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func byTag(components []string) map[string]string {
	m := make(map[string]string, len(components))
	for _, c := range components {
		if tag, value, ok := strings.Cut(c, ":"); ok {
			m[tag] = value
		}
	}
	return m
}

func equalStringSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
