// Package procrun runs external programs to completion while streaming their
// output.
//
// A Runner launches one child process per invocation with stdin bound to the
// null device, reads stdout and stderr incrementally, forwards every chunk to
// a Sink as soon as it arrives, and resolves exactly one terminal outcome:
// the combined output on exit code zero, an *ExitError for any other exit
// status, or a *LaunchError when the operating system could not start the
// program at all. Arguments are passed verbatim; no shell is involved.
//
// The runner imposes no timeout and does not support cancellation. Callers
// that need a deadline select on Invocation.Done against their own timer and
// abandon the result; the child keeps running until it exits on its own.
package procrun
