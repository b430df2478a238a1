// Package buildsys implements a minimal build system: an ordered list of tasks, each with its own
// error policy, and a shell runtime based on mvdan.cc/sh for the external tools the tasks call.
// The goal is a small and portable runner whose behaviour doesn't depend on the host's shell.
package buildsys
