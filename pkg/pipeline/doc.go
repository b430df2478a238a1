// Package pipeline declares the build of the web UI: clean the output directory, compile the
// stylesheet, copy the public assets and compile the Elm application.
package pipeline
