package client

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/RezaEskandarii/lrrctl/types"
	"go.uber.org/zap"
)

var versionDigits = regexp.MustCompile(`\d+`)

// CheckVersion asks GitHub for the latest release and shows a persistent toast when
// it is newer than current. Failures are only logged.
func (c *Console) CheckVersion(ctx context.Context, current string) (types.Release, bool) {
	log := c.api.Logger().With(zap.String("current", current))

	result, err := c.api.Fetch(ctx, Request{Endpoint: c.releaseURL, Method: http.MethodGet})
	if err != nil {
		log.Warn("failed to query the latest release", zap.Error(err))
		return types.Release{}, false
	}

	var release types.Release
	if err := result.Decode(&release); err != nil || release.TagName == "" {
		log.Warn("unexpected release payload", zap.Error(err))
		return types.Release{}, false
	}

	newer := CompareVersions(release.TagName, current) > 0
	if newer {
		c.api.notify(ctx, types.ToastMessage{
			Heading: fmt.Sprintf("A new version of LANraragi (%s) is available!", release.TagName),
			Body:    release.HTMLURL,
			Icon:    types.IconInfo,
		})
	}
	return release, newer
}

// ServerInfo returns the server's name and version. Failures are only logged.
func (c *Console) ServerInfo(ctx context.Context) (types.ServerInfo, bool) {
	result, err := c.api.Fetch(ctx, Request{Endpoint: "/api/info", Method: http.MethodGet})
	if err != nil {
		c.api.Logger().Warn("failed to query server info", zap.Error(err))
		return types.ServerInfo{}, false
	}
	var info types.ServerInfo
	if err := result.Decode(&info); err != nil {
		c.api.Logger().Warn("unexpected server info payload", zap.Error(err))
		return types.ServerInfo{}, false
	}
	return info, true
}

// CompareVersions compares the numeric components of two version strings such as
// "v.0.8.1" and "0.7.9", returning -1, 0 or 1. Missing components count as zero.
func CompareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	for len(pa) < len(pb) {
		pa = append(pa, 0)
	}
	for len(pb) < len(pa) {
		pb = append(pb, 0)
	}
	for i := range pa {
		switch {
		case pa[i] > pb[i]:
			return 1
		case pa[i] < pb[i]:
			return -1
		}
	}
	return 0
}

func versionParts(v string) []int {
	matches := versionDigits.FindAllString(v, -1)
	parts := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			n = 0
		}
		parts = append(parts, n)
	}
	return parts
}
