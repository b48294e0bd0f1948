// Package logs reads the clipfetch log file for the "clipfetch logs" command.
//
// Last returns the final lines of the file with bounded memory. Follow polls
// from an offset and survives truncation, so a log rotated underneath it is
// read again from the start.
package logs
