// Package services holds the error taxonomy shared by the external
// collaborator clients (tts, deck, raster, media) and the helpers that
// classify their failures for the build executor.
package services
