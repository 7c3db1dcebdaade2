//go:build drvfs_debug

package debug

const Enabled = true
