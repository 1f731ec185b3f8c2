// Package alert sends operator notifications about failed import runs.
package alert
