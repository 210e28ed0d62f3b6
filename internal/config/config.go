// Package config holds the mount options assembled from CLI flags, in the
// style of the teacher's settings.Settings/Default pattern.
package config

// Options configures one mount run.
type Options struct {
	ImagePath string
	MountPath string
	Debug     bool
	Launch    bool
}

// Default returns the zero-value options for imagePath/mountPath: debug
// output and post-mount launch both off.
func Default(imagePath, mountPath string) Options {
	return Options{
		ImagePath: imagePath,
		MountPath: mountPath,
		Debug:     false,
		Launch:    false,
	}
}
