//go:build windows

package supervisor

func ignoreTerm() {}
