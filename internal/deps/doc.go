// Package deps reports whether the external binaries the pipeline shells
// out to are installed, and which video encoders ffmpeg was built with.
package deps
