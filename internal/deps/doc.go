// Package deps verifies the external tools the pipeline shells out to.
package deps
