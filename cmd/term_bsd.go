//go:build darwin || freebsd || netbsd || openbsd

package cmd

import "golang.org/x/sys/unix"

const ioctlReadTermios = unix.TIOCGETA
