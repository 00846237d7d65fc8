// Package pipeline defines the types, interfaces, and error taxonomy shared by
// the content-acquisition paths and the report synthesizer. It also owns URL
// normalization, the single entry point for user-supplied addresses.
package pipeline
