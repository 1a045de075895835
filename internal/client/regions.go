package client

import (
	"fmt"
	"sort"
	"strings"
)

// regionHosts maps CloudControl region codes to their API hosts.
var regionHosts = map[string]string{
	"na":     "api-na.dimensiondata.com",
	"eu":     "api-eu.dimensiondata.com",
	"au":     "api-au.dimensiondata.com",
	"af":     "api-mea.dimensiondata.com",
	"ap":     "api-ap.dimensiondata.com",
	"canada": "api-canada.dimensiondata.com",
	"in":     "api-in.dimensiondata.com",
	"il":     "api-il.dimensiondata.com",
}

// Regions returns the known region codes in sorted order.
func Regions() []string {
	out := make([]string, 0, len(regionHosts))
	for r := range regionHosts {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// RegionBaseURL returns the HTTPS base URL of the API for region.
func RegionBaseURL(region string) (string, error) {
	host, ok := regionHosts[strings.ToLower(strings.TrimSpace(region))]
	if !ok {
		return "", fmt.Errorf("invalid region %q: regions must be one of %v", region, Regions())
	}
	return "https://" + host, nil
}
