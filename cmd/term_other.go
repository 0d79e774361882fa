//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package cmd

func isTerminal(int) bool { return false }
