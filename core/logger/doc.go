// Package logger is a standardized event logging framework for the shell's
// command cycles.
package logger
