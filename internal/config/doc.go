// Package config provides configuration structures and utilities for sidenote.
// It defines the rendering options, the batch settings and the optional
// per-document overrides read from a .sidenote file.
package config
