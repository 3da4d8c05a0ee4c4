// Package logx is a thin structured-logging layer over zerolog.
//
// It exists so the rest of the codebase never imports zerolog directly
// and so log output (level, console, file) can be re-applied at runtime
// when the config file changes.
package logx
