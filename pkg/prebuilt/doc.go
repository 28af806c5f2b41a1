// Package prebuilt provides ready-made block definitions for common patterns:
// constants, passthrough, arithmetic, boolean logic, repetition, counters, and
// log output. Each definition is plain data plus callables and can be
// registered into any block registry; RegisterAll installs the whole library
// at once.
package prebuilt
