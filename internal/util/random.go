package util

import (
	"fmt"
	"runtime"

	"github.com/gosimple/slug"
	"github.com/lithammer/shortuuid/v4"
)

// GenerateDeviceToken builds an installation token from the device info,
// e.g. "blood-notify-linux-amd64-3Xk9pQ2a".
func GenerateDeviceToken(deviceInfo string) string {
	baseSlug := slug.Make(deviceInfo)
	shortID := shortuuid.New()[:8]

	return fmt.Sprintf("%s-%s", baseSlug, shortID)
}

// DeviceInfo describes the running client the way the backend stores it
// alongside a push token.
func DeviceInfo(clientName string) string {
	if clientName == "" {
		clientName = "Unknown"
	}
	return fmt.Sprintf("%s - %s/%s", clientName, runtime.GOOS, runtime.GOARCH)
}
