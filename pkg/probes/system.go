package probes

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/openfacts/openfacts/pkg/facts"
)

// SystemGroup resolves the host identity cluster: kernel, OS release,
// hostname, uptime, and virtualization.
type SystemGroup struct{}

func (g *SystemGroup) Name() string { return "system" }

func (g *SystemGroup) FactNames() []string {
	return []string{
		"kernel", "kernelrelease", "kernelversion",
		"os", "hostname", "uptime", "virtualization",
	}
}

func (g *SystemGroup) Populate(ctx context.Context, c *facts.Collection) error {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return fmt.Errorf("host probe failed: %w", err)
	}

	c.Add("kernel", kernelName(info.OS))
	c.Add("kernelrelease", info.KernelVersion)
	c.Add("kernelversion", baseVersion(info.KernelVersion))
	c.Add("hostname", info.Hostname)

	release := facts.NewMapping()
	release.Set("full", info.PlatformVersion)
	if major := versionComponent(info.PlatformVersion, 0); major != "" {
		release.Set("major", major)
	}
	if minor := versionComponent(info.PlatformVersion, 1); minor != "" {
		release.Set("minor", minor)
	}

	os := facts.NewMapping()
	os.Set("name", info.Platform)
	os.Set("family", info.PlatformFamily)
	os.Set("architecture", info.KernelArch)
	os.Set("release", release)
	c.Add("os", os)

	uptime := facts.NewMapping()
	uptime.Set("seconds", int64(info.Uptime))
	uptime.Set("hours", int64(info.Uptime/3600))
	uptime.Set("days", int64(info.Uptime/86400))
	c.Add("uptime", uptime)

	if info.VirtualizationSystem != "" {
		virt := facts.NewMapping()
		virt.Set("system", info.VirtualizationSystem)
		virt.Set("role", info.VirtualizationRole)
		c.Add("virtualization", virt)
	}

	return nil
}

// kernelName maps the probe's lowercase OS identifier onto the
// conventional kernel fact value.
func kernelName(os string) string {
	switch os {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "windows"
	case "freebsd":
		return "FreeBSD"
	case "openbsd":
		return "OpenBSD"
	default:
		return os
	}
}

// baseVersion strips distribution suffixes from a kernel release, keeping
// the dotted numeric prefix ("6.8.0-45-generic" becomes "6.8.0").
func baseVersion(release string) string {
	version, _, _ := strings.Cut(release, "-")
	return version
}

func versionComponent(version string, index int) string {
	parts := strings.Split(version, ".")
	if index >= len(parts) {
		return ""
	}
	return parts[index]
}
