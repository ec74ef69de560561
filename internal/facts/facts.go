// Package facts detects the distribution of the target host.
package facts

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/imamik/dkimctl/internal/host"
)

// OSReleasePath is where distributions describe themselves.
const OSReleasePath = "/etc/os-release"

// Family groups distributions that share a package-setup procedure.
type Family string

const (
	// FamilyDebian covers Debian, Ubuntu and derivatives (apt/dpkg).
	FamilyDebian Family = "debian"
	// FamilyRedHat covers RHEL, CentOS, Rocky, AlmaLinux and Fedora (yum/rpm).
	FamilyRedHat Family = "redhat"
	// FamilyUnknown is any distribution without a setup procedure.
	FamilyUnknown Family = "unknown"
)

// Facts describes the target host. Detected once per run.
type Facts struct {
	Distribution string `json:"distribution" yaml:"distribution"`
	Family       Family `json:"family" yaml:"family"`
	Version      string `json:"version,omitempty" yaml:"version,omitempty"`
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
}

// Supported reports whether the family has a setup procedure.
func (f *Facts) Supported() bool {
	return f.Family == FamilyDebian || f.Family == FamilyRedHat
}

// Canonical distribution names keyed by os-release ID.
var distributionNames = map[string]string{
	"ubuntu":    "Ubuntu",
	"debian":    "Debian",
	"centos":    "CentOS",
	"rhel":      "RedHat",
	"redhat":    "RedHat",
	"rocky":     "Rocky",
	"almalinux": "AlmaLinux",
	"fedora":    "Fedora",
}

var familyByID = map[string]Family{
	"ubuntu":    FamilyDebian,
	"debian":    FamilyDebian,
	"centos":    FamilyRedHat,
	"rhel":      FamilyRedHat,
	"redhat":    FamilyRedHat,
	"rocky":     FamilyRedHat,
	"almalinux": FamilyRedHat,
	"fedora":    FamilyRedHat,
}

// Classify maps a distribution ID (or name) and its ID_LIKE list to a family.
func Classify(id string, like []string) Family {
	if f, ok := familyByID[normalize(id)]; ok {
		return f
	}
	for _, l := range like {
		switch normalize(l) {
		case "debian", "ubuntu":
			return FamilyDebian
		case "rhel", "fedora", "centos":
			return FamilyRedHat
		}
	}
	return FamilyUnknown
}

// ParseOSRelease decodes os-release(5) content.
func ParseOSRelease(data []byte) map[string]string {
	values := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	return values
}

// FromOSRelease builds Facts from parsed os-release values.
func FromOSRelease(values map[string]string) *Facts {
	id := normalize(values["ID"])
	name, ok := distributionNames[id]
	if !ok {
		name = values["NAME"]
	}
	if name == "" {
		name = id
	}

	return &Facts{
		Distribution: name,
		Family:       Classify(id, strings.Fields(values["ID_LIKE"])),
		Version:      values["VERSION_ID"],
		ID:           id,
	}
}

// FromDistribution builds Facts from a distribution name given in
// configuration, such as "CentOS" or "ubuntu".
func FromDistribution(distribution string) *Facts {
	id := normalize(distribution)
	name, ok := distributionNames[id]
	if !ok {
		name = distribution
	}
	return &Facts{
		Distribution: name,
		Family:       Classify(id, nil),
		ID:           id,
	}
}

// Gather reads os-release from h. A non-empty override replaces the detected
// distribution and family; the version is still taken from os-release when
// the host belongs to the same family.
func Gather(ctx context.Context, h host.Host, override string) (*Facts, error) {
	if override != "" {
		f := FromDistribution(override)
		if data, err := h.ReadFile(ctx, OSReleasePath); err == nil {
			if detected := FromOSRelease(ParseOSRelease(data)); detected.Family == f.Family {
				f.Version = detected.Version
			}
		}
		return f, nil
	}

	data, err := h.ReadFile(ctx, OSReleasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s on %s: %w", OSReleasePath, h.Name(), err)
	}
	return FromOSRelease(ParseOSRelease(data)), nil
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "red hat", "red hat enterprise linux":
		return "rhel"
	case "alma", "alma linux":
		return "almalinux"
	case "rocky linux":
		return "rocky"
	}
	return s
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, `\"`, `"`)
}
