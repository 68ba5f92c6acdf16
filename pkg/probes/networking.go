package probes

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/openfacts/openfacts/pkg/facts"
)

// NetworkGroup resolves the networking cluster: per-interface bindings plus
// the flat primary address facts.
type NetworkGroup struct{}

func (g *NetworkGroup) Name() string { return "networking" }

func (g *NetworkGroup) FactNames() []string {
	return []string{"networking", "ipaddress", "macaddress", "interfaces"}
}

func (g *NetworkGroup) Populate(ctx context.Context, c *facts.Collection) error {
	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return fmt.Errorf("network probe failed: %w", err)
	}

	interfaceMap := facts.NewMapping()
	var names []string
	var primaryIP, primaryMAC string

	for _, iface := range ifaces {
		names = append(names, iface.Name)

		entry := facts.NewMapping()
		entry.Set("mac", iface.HardwareAddr)
		entry.Set("mtu", int64(iface.MTU))

		bindings := make([]any, 0, len(iface.Addrs))
		for _, addr := range iface.Addrs {
			ip, _, _ := strings.Cut(addr.Addr, "/")
			binding := facts.NewMapping()
			binding.Set("address", ip)
			binding.Set("network", addr.Addr)
			bindings = append(bindings, binding)

			if primaryIP == "" && !isLoopback(iface, ip) && strings.Contains(ip, ".") {
				primaryIP = ip
				primaryMAC = iface.HardwareAddr
			}
		}
		entry.Set("bindings", bindings)
		interfaceMap.Set(iface.Name, entry)
	}

	networking := facts.NewMapping()
	networking.Set("interfaces", interfaceMap)
	if primaryIP != "" {
		networking.Set("ip", primaryIP)
		networking.Set("mac", primaryMAC)
		c.Add("ipaddress", primaryIP)
		c.Add("macaddress", primaryMAC)
	}

	c.Add("networking", networking)
	c.Add("interfaces", strings.Join(names, ","))
	return nil
}

func isLoopback(iface net.InterfaceStat, ip string) bool {
	if strings.HasPrefix(ip, "127.") || ip == "::1" {
		return true
	}
	for _, flag := range iface.Flags {
		if flag == "loopback" {
			return true
		}
	}
	return false
}
