//go:build !amd64 && !arm64

package tilebench

func init() {
	// No feature detection on other architectures; reports list none.
	currentFeatures = nil
}
